package extract

import (
    "bytes"
    "errors"
    "strings"

    "golang.org/x/net/html"
    "golang.org/x/text/unicode/norm"
)

// ErrNoScoreTable reports that the document carries no score table at all.
// Profile pages without metric data are a normal upstream condition, so
// callers should treat this as "no data for this document" and move on.
var ErrNoScoreTable = errors.New("extract: no score table in document")

// Inline-style markers the scoring table uses in place of a machine-readable
// schema. Section headers and detail rows carry a decorative left border,
// subtotal captions are italic, and the grand total row uses an accent color.
const (
    leftBorderMarker = "border-left: 3px solid"
    grandTotalAccent = "#FF6B1A"
    italicMarker     = "font-style: italic"
)

// FromHTML extracts the scoring table of one SINTA metrics-cluster page into
// an ordered SectionMap. Extraction is a pure function of the input: no
// network, no clock, and identical bytes always yield an identical map with
// rows in document order.
func FromHTML(input []byte) (*SectionMap, error) {
    node, err := html.Parse(bytes.NewReader(input))
    if err != nil || node == nil {
        return nil, ErrNoScoreTable
    }
    table := findScoreTable(node)
    if table == nil {
        return nil, ErrNoScoreTable
    }

    m := newSectionMap()
    current := ""
    for _, row := range tableRows(table) {
        cells := rowCells(row)
        switch classify(cells) {
        case kindSectionHeader:
            current = findSectionHeader(cells).text
            m.openSection(current)
        case kindGrandTotal:
            m.setGrandTotal(lastHeadingText(cells))
        case kindSubtotal:
            // Rows preceding the first section header have no home; the
            // legacy parser built a malformed "(subtotal)" key here.
            if current == "" {
                continue
            }
            m.addSubtotal(current, SubtotalEntry{
                Label: findSubtotal(cells).text,
                Value: lastHeadingText(cells),
            })
        case kindDetail:
            if current == "" {
                continue
            }
            m.addRow(current, detailRow(cells))
        }
    }
    return m, nil
}

// rowKind classifies one table row into exactly one category.
type rowKind int

const (
    kindUnclassified rowKind = iota
    kindSectionHeader
    kindGrandTotal
    kindSubtotal
    kindDetail
)

// classifiers is the extraction grammar: an ordered predicate list, first
// match wins. A row matching an earlier predicate is never re-tested against
// a later one, which preserves the table's own precedence (a grand-total row
// also carries heading cells a later predicate could misread).
var classifiers = []struct {
    kind  rowKind
    match func(cells []cell) bool
}{
    {kindSectionHeader, isSectionHeader},
    {kindGrandTotal, isGrandTotal},
    {kindSubtotal, isSubtotal},
    {kindDetail, isDetail},
}

func classify(cells []cell) rowKind {
    for _, c := range classifiers {
        if c.match(cells) {
            return c.kind
        }
    }
    return kindUnclassified
}

// cell is one <th> or <td> reduced to the attributes the grammar keys on.
type cell struct {
    heading bool
    colspan bool
    style   string
    text    string
}

// findSectionHeader returns the heading cell that opens a section: it spans
// columns, carries the left-border marker, is not a "Total" caption, and
// names a "Score in" group.
func findSectionHeader(cells []cell) *cell {
    for i := range cells {
        c := &cells[i]
        if c.heading && c.colspan &&
            strings.Contains(c.style, leftBorderMarker) &&
            !strings.Contains(c.text, "Total") &&
            strings.Contains(c.text, "Score in") {
            return c
        }
    }
    return nil
}

func isSectionHeader(cells []cell) bool { return findSectionHeader(cells) != nil }

func findGrandTotal(cells []cell) *cell {
    for i := range cells {
        c := &cells[i]
        if c.heading && strings.Contains(c.style, grandTotalAccent) &&
            strings.Contains(c.text, "TOTAL ALL SCORE") {
            return c
        }
    }
    return nil
}

func isGrandTotal(cells []cell) bool { return findGrandTotal(cells) != nil }

func findSubtotal(cells []cell) *cell {
    for i := range cells {
        c := &cells[i]
        if c.heading && strings.Contains(c.style, italicMarker) &&
            strings.Contains(c.text, "Total Score") {
            return c
        }
    }
    return nil
}

func isSubtotal(cells []cell) bool { return findSubtotal(cells) != nil }

// isDetail matches a leaf metric row: the first cell carries the left-border
// marker and the row has the six cells that hold marker, code, name, weight,
// value and total. The legacy parser accepted five cells and then read the
// sixth, so six is the real minimum.
func isDetail(cells []cell) bool {
    return len(cells) >= 6 && strings.Contains(cells[0].style, leftBorderMarker)
}

func detailRow(cells []cell) ScoreRow {
    return ScoreRow{
        Code:   cells[1].text,
        Name:   cells[2].text,
        Weight: cells[3].text,
        Value:  normalizeDecimal(cells[4].text),
        Total:  normalizeDecimal(cells[5].text),
    }
}

// normalizeDecimal rewrites locale decimal commas to periods. No other
// locale handling (thousands separators, whitespace) is attempted; malformed
// text passes through unchanged and coercion is deferred to consumers.
func normalizeDecimal(s string) string {
    return strings.ReplaceAll(s, ",", ".")
}

// lastHeadingText returns the text of the row's last heading cell, where
// total rows place their value.
func lastHeadingText(cells []cell) string {
    for i := len(cells) - 1; i >= 0; i-- {
        if cells[i].heading {
            return cells[i].text
        }
    }
    return ""
}

// findScoreTable locates the first <table> carrying the "table" class token.
func findScoreTable(n *html.Node) *html.Node {
    var res *html.Node
    var dfs func(*html.Node)
    dfs = func(cur *html.Node) {
        if res != nil {
            return
        }
        if cur.Type == html.ElementNode && strings.EqualFold(cur.Data, "table") && hasClassToken(cur, "table") {
            res = cur
            return
        }
        for c := cur.FirstChild; c != nil; c = c.NextSibling {
            dfs(c)
            if res != nil {
                return
            }
        }
    }
    dfs(n)
    return res
}

func hasClassToken(n *html.Node, token string) bool {
    for _, t := range strings.Fields(attrValue(n, "class")) {
        if t == token {
            return true
        }
    }
    return false
}

// tableRows collects every <tr> under the table in document order.
func tableRows(table *html.Node) []*html.Node {
    var rows []*html.Node
    var dfs func(*html.Node)
    dfs = func(cur *html.Node) {
        for c := cur.FirstChild; c != nil; c = c.NextSibling {
            if c.Type == html.ElementNode && strings.EqualFold(c.Data, "tr") {
                rows = append(rows, c)
            }
            dfs(c)
        }
    }
    dfs(table)
    return rows
}

// rowCells reduces a row to its <th>/<td> cells in document order.
func rowCells(row *html.Node) []cell {
    var cells []cell
    var dfs func(*html.Node)
    dfs = func(cur *html.Node) {
        for c := cur.FirstChild; c != nil; c = c.NextSibling {
            if c.Type == html.ElementNode {
                name := strings.ToLower(c.Data)
                if name == "th" || name == "td" {
                    cells = append(cells, cell{
                        heading: name == "th",
                        colspan: hasAttr(c, "colspan"),
                        style:   attrValue(c, "style"),
                        text:    cellText(c),
                    })
                    continue
                }
            }
            dfs(c)
        }
    }
    dfs(row)
    return cells
}

// cellText gathers all descendant text, collapses whitespace runs to single
// spaces, trims, and NFC-normalizes so caption matching is stable across
// composed and decomposed source encodings.
func cellText(n *html.Node) string {
    var b strings.Builder
    var dfs func(*html.Node)
    dfs = func(cur *html.Node) {
        if cur.Type == html.TextNode {
            b.WriteString(cur.Data)
        }
        for c := cur.FirstChild; c != nil; c = c.NextSibling {
            dfs(c)
        }
    }
    dfs(n)
    return norm.NFC.String(strings.TrimSpace(collapseSpaces(b.String())))
}

func collapseSpaces(s string) string {
    var b strings.Builder
    lastSpace := false
    for _, r := range s {
        if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
            if !lastSpace {
                b.WriteByte(' ')
                lastSpace = true
            }
            continue
        }
        b.WriteRune(r)
        lastSpace = false
    }
    return b.String()
}

func attrValue(n *html.Node, key string) string {
    for _, a := range n.Attr {
        if strings.EqualFold(a.Key, key) {
            return a.Val
        }
    }
    return ""
}

func hasAttr(n *html.Node, key string) bool {
    for _, a := range n.Attr {
        if strings.EqualFold(a.Key, key) {
            return true
        }
    }
    return false
}
