package extract

import (
    "encoding/json"
    "errors"
    "reflect"
    "strings"
    "testing"
)

const samplePage = `<!doctype html>
<html>
  <head><title>Affiliation Profile</title></head>
  <body>
    <div class="card">
      <table class="table">
        <tr><th>No</th><th>Code</th><th>Indicator</th><th>Weight</th><th>Value</th><th>Score</th></tr>
        <tr><th colspan="6" style="border-left: 3px solid #009390; background: #f7f7f7;">1. Score in Publication</th></tr>
        <tr>
          <th style="border-left: 3px solid #009390;">1</th>
          <td>AI1</td>
          <td>Articles in Q1 Journals</td>
          <td>40</td>
          <td>0,092</td>
          <td>3,68</td>
        </tr>
        <tr>
          <th style="border-left: 3px solid #009390;">2</th>
          <td>AI7</td>
          <td>International Citations per Author</td>
          <td>0,4</td>
          <td>343,01</td>
          <td>137,2</td>
        </tr>
        <tr>
          <th colspan="4" style="font-style: italic; text-align: right;">Total Score Publication</th>
          <th></th>
          <th>140,88</th>
        </tr>
        <tr><th colspan="6" style="border-left: 3px solid #009390;">2. Score in Research</th></tr>
        <tr>
          <th style="border-left: 3px solid #009390;">1</th>
          <td>P5</td>
          <td>Research Funding</td>
          <td>0,1</td>
          <td>486</td>
          <td>48,6</td>
        </tr>
        <tr>
          <th colspan="4" style="font-style: italic;">Total Score Research</th>
          <th></th>
          <th>48,6</th>
        </tr>
        <tr>
          <th colspan="4" style="background-color: #FF6B1A; color: #fff;">TOTAL ALL SCORE</th>
          <th></th>
          <th>543,21</th>
        </tr>
      </table>
    </div>
  </body>
</html>`

func TestFromHTML_AssignsDetailRowsToSections(t *testing.T) {
    m, err := FromHTML([]byte(samplePage))
    if err != nil {
        t.Fatalf("unexpected error: %v", err)
    }
    sections := m.Sections()
    want := []string{"1. Score in Publication", "2. Score in Research"}
    if !reflect.DeepEqual(sections, want) {
        t.Fatalf("expected sections %v, got %v", want, sections)
    }
    rows := m.Rows("1. Score in Publication")
    if len(rows) != 2 {
        t.Fatalf("expected 2 publication rows, got %d", len(rows))
    }
    if rows[0].Code != "AI1" || rows[1].Code != "AI7" {
        t.Fatalf("expected document order AI1, AI7; got %q, %q", rows[0].Code, rows[1].Code)
    }
    if rows[0].Name != "Articles in Q1 Journals" || rows[0].Weight != "40" {
        t.Fatalf("unexpected row fields: %+v", rows[0])
    }
    research := m.Rows("2. Score in Research")
    if len(research) != 1 || research[0].Code != "P5" {
        t.Fatalf("expected research row P5, got %+v", research)
    }
}

func TestFromHTML_NoScoreTable(t *testing.T) {
    cases := map[string]string{
        "no table at all":     `<html><body><p>maintenance page</p></body></html>`,
        "wrong class token":   `<html><body><table class="scores"><tr><td>x</td></tr></table></body></html>`,
        "class is substring":  `<html><body><table class="tablelike"><tr><td>x</td></tr></table></body></html>`,
    }
    for name, doc := range cases {
        if _, err := FromHTML([]byte(doc)); !errors.Is(err, ErrNoScoreTable) {
            t.Fatalf("%s: expected ErrNoScoreTable, got %v", name, err)
        }
    }
}

func TestFromHTML_NormalizesDetailDecimals(t *testing.T) {
    m, err := FromHTML([]byte(samplePage))
    if err != nil {
        t.Fatalf("unexpected error: %v", err)
    }
    rows := m.Rows("1. Score in Publication")
    if rows[0].Value != "0.092" {
        t.Fatalf("expected comma-to-dot value %q, got %q", "0.092", rows[0].Value)
    }
    if rows[0].Total != "3.68" {
        t.Fatalf("expected comma-to-dot total %q, got %q", "3.68", rows[0].Total)
    }
    // Weight is displayed verbatim; only value and total are rewritten.
    if rows[1].Weight != "0,4" {
        t.Fatalf("expected weight kept as displayed, got %q", rows[1].Weight)
    }
}

func TestFromHTML_GrandTotalKeptVerbatim(t *testing.T) {
    m, err := FromHTML([]byte(samplePage))
    if err != nil {
        t.Fatalf("unexpected error: %v", err)
    }
    total, ok := m.GrandTotal()
    if !ok {
        t.Fatalf("expected a grand total")
    }
    if total != "543,21" {
        t.Fatalf("grand total must not be decimal-normalized; got %q", total)
    }
    b, err := json.Marshal(m)
    if err != nil {
        t.Fatalf("marshal: %v", err)
    }
    if !strings.Contains(string(b), `"TOTAL ALL SCORE":"543,21"`) {
        t.Fatalf("expected verbatim grand total in JSON, got %s", b)
    }
}

func TestFromHTML_SubtotalKeepsDisplayedValue(t *testing.T) {
    m, err := FromHTML([]byte(samplePage))
    if err != nil {
        t.Fatalf("unexpected error: %v", err)
    }
    subs := m.Subtotals("1. Score in Publication")
    if len(subs) != 1 {
        t.Fatalf("expected one subtotal entry, got %d", len(subs))
    }
    if subs[0].Label != "Total Score Publication" {
        t.Fatalf("unexpected subtotal label %q", subs[0].Label)
    }
    if subs[0].Value != "140,88" {
        t.Fatalf("subtotal value must be kept as displayed; got %q", subs[0].Value)
    }
}

func TestFromHTML_RowsBeforeFirstSectionAreDropped(t *testing.T) {
    doc := `<html><body><table class="table">
      <tr>
        <th style="border-left: 3px solid #009390;">1</th>
        <td>AI1</td><td>Orphan</td><td>40</td><td>1,0</td><td>40,0</td>
      </tr>
      <tr>
        <th colspan="4" style="font-style: italic;">Total Score Publication</th>
        <th></th><th>12,3</th>
      </tr>
      <tr><th colspan="6" style="border-left: 3px solid #009390;">1. Score in Publication</th></tr>
      <tr>
        <th style="border-left: 3px solid #009390;">1</th>
        <td>AI2</td><td>Kept</td><td>30</td><td>2,0</td><td>60,0</td>
      </tr>
    </table></body></html>`
    m, err := FromHTML([]byte(doc))
    if err != nil {
        t.Fatalf("unexpected error: %v", err)
    }
    keys := m.Keys()
    if !reflect.DeepEqual(keys, []string{"1. Score in Publication"}) {
        t.Fatalf("expected only the real section key, got %v", keys)
    }
    rows := m.Rows("1. Score in Publication")
    if len(rows) != 1 || rows[0].Code != "AI2" {
        t.Fatalf("expected only the in-section row, got %+v", rows)
    }
    if subs := m.Subtotals("1. Score in Publication"); len(subs) != 0 {
        t.Fatalf("orphan subtotal must not attach to a later section: %+v", subs)
    }
}

func TestFromHTML_DuplicateCaptionsShareOneEntry(t *testing.T) {
    doc := `<html><body><table class="table">
      <tr><th colspan="6" style="border-left: 3px solid #009390;">Score in Books</th></tr>
      <tr>
        <th style="border-left: 3px solid #009390;">1</th>
        <td>B1</td><td>First</td><td>10</td><td>1</td><td>10</td>
      </tr>
      <tr><th colspan="6" style="border-left: 3px solid #009390;">Score in Books</th></tr>
      <tr>
        <th style="border-left: 3px solid #009390;">2</th>
        <td>B2</td><td>Second</td><td>10</td><td>2</td><td>20</td>
      </tr>
    </table></body></html>`
    m, err := FromHTML([]byte(doc))
    if err != nil {
        t.Fatalf("unexpected error: %v", err)
    }
    if got := m.Sections(); len(got) != 1 {
        t.Fatalf("identical captions must collide into one entry, got %v", got)
    }
    rows := m.Rows("Score in Books")
    if len(rows) != 2 || rows[0].Code != "B1" || rows[1].Code != "B2" {
        t.Fatalf("expected both rows under the shared caption, got %+v", rows)
    }
}

func TestFromHTML_Idempotent(t *testing.T) {
    a, err := FromHTML([]byte(samplePage))
    if err != nil {
        t.Fatalf("first extract: %v", err)
    }
    b, err := FromHTML([]byte(samplePage))
    if err != nil {
        t.Fatalf("second extract: %v", err)
    }
    if !reflect.DeepEqual(a, b) {
        t.Fatalf("extraction is not deterministic")
    }
}

func TestSectionMap_MarshalKeyOrder(t *testing.T) {
    m, err := FromHTML([]byte(samplePage))
    if err != nil {
        t.Fatalf("unexpected error: %v", err)
    }
    b, err := json.Marshal(m)
    if err != nil {
        t.Fatalf("marshal: %v", err)
    }
    s := string(b)
    order := []string{
        `"1. Score in Publication"`,
        `"1. Score in Publication (subtotal)"`,
        `"2. Score in Research"`,
        `"2. Score in Research (subtotal)"`,
        `"TOTAL ALL SCORE"`,
    }
    last := -1
    for _, key := range order {
        idx := strings.Index(s, key)
        if idx < 0 {
            t.Fatalf("expected key %s in output %s", key, s)
        }
        if idx < last {
            t.Fatalf("key %s out of document order in %s", key, s)
        }
        last = idx
    }
}

func TestSectionMap_JSONRoundTrip(t *testing.T) {
    m, err := FromHTML([]byte(samplePage))
    if err != nil {
        t.Fatalf("unexpected error: %v", err)
    }
    b, err := json.Marshal(m)
    if err != nil {
        t.Fatalf("marshal: %v", err)
    }
    var back SectionMap
    if err := json.Unmarshal(b, &back); err != nil {
        t.Fatalf("unmarshal: %v", err)
    }
    if !reflect.DeepEqual(m, &back) {
        t.Fatalf("round trip changed the map:\n want %+v\n got  %+v", m, &back)
    }
}
