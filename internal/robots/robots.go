// Package robots fetches and evaluates a host's robots.txt so the crawl can
// honor Disallow rules and Crawl-delay hints before touching profile pages.
package robots

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/rahadiankp/sintametrics/internal/cache"
)

// Rules is the parsed ruleset for one host. The zero value allows everything.
type Rules struct {
	groups []group
}

type group struct {
	agents   []string
	allow    []string
	disallow []string
	delay    time.Duration
	hasDelay bool
}

// Fetch retrieves and parses robotsURL. Failure policy follows common crawler
// practice: a 404 means no restrictions, while a transport error or any other
// non-2xx status disallows the host for this run. A 304 against the page
// cache reuses the stored body.
func Fetch(ctx context.Context, hc *http.Client, robotsURL, userAgent string, pc *cache.PageCache) Rules {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return disallowAll()
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	if pc != nil {
		if meta, err := pc.LoadMeta(ctx, robotsURL); err == nil && meta != nil {
			if meta.ETag != "" {
				req.Header.Set("If-None-Match", meta.ETag)
			}
			if meta.LastModified != "" {
				req.Header.Set("If-Modified-Since", meta.LastModified)
			}
		}
	}
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := hc.Do(req)
	if err != nil {
		return disallowAll()
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotModified && pc != nil:
		body, err := pc.LoadBody(ctx, robotsURL)
		if err != nil {
			return disallowAll()
		}
		return Parse(string(body))
	case resp.StatusCode == http.StatusNotFound:
		return Rules{}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return disallowAll()
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return disallowAll()
	}
	if pc != nil {
		_ = pc.Save(ctx, robotsURL, "text/plain", resp.Header.Get("ETag"), resp.Header.Get("Last-Modified"), data)
	}
	return Parse(string(data))
}

func disallowAll() Rules {
	return Rules{groups: []group{{agents: []string{"*"}, disallow: []string{"/"}}}}
}

// Parse reads robots.txt text into a ruleset. Unknown directives are ignored.
func Parse(text string) Rules {
	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var groups []group
	cur := group{}
	started := false // directives seen since the last user-agent line
	flush := func() {
		if len(cur.agents) > 0 || len(cur.allow) > 0 || len(cur.disallow) > 0 || cur.hasDelay {
			groups = append(groups, cur)
		}
		cur = group{}
		started = false
	}
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		colon := strings.IndexByte(line, ':')
		if colon <= 0 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(line[:colon]))
		val := strings.TrimSpace(line[colon+1:])
		switch key {
		case "user-agent":
			if started {
				flush()
			}
			cur.agents = append(cur.agents, strings.ToLower(val))
		case "allow":
			cur.allow = append(cur.allow, val)
			started = true
		case "disallow":
			cur.disallow = append(cur.disallow, val)
			started = true
		case "crawl-delay":
			if d, err := time.ParseDuration(val + "s"); err == nil {
				cur.delay = d
				cur.hasDelay = true
			}
			started = true
		}
	}
	flush()
	return Rules{groups: groups}
}

// Allowed reports whether the given path (query string included) may be
// fetched by the given user agent. The most specific matching directive in
// the best-matching agent group wins; specificity is the pattern length with
// wildcards removed, and Allow beats Disallow on ties. No match means allow.
func (r Rules) Allowed(userAgent, path string) bool {
	g, ok := r.groupFor(userAgent)
	if !ok {
		return true
	}
	best := -1
	allowed := true
	consider := func(patterns []string, isAllow bool) {
		for _, p := range patterns {
			if p == "" {
				continue
			}
			if !patternMatches(p, path) {
				continue
			}
			score := len(strings.ReplaceAll(strings.TrimSuffix(p, "$"), "*", ""))
			if score > best || (score == best && isAllow && !allowed) {
				best = score
				allowed = isAllow
			}
		}
	}
	consider(g.disallow, false)
	consider(g.allow, true)
	if best == -1 {
		return true
	}
	return allowed
}

// CrawlDelay returns the Crawl-delay hint for the best-matching agent group.
func (r Rules) CrawlDelay(userAgent string) (time.Duration, bool) {
	g, ok := r.groupFor(userAgent)
	if !ok || !g.hasDelay {
		return 0, false
	}
	return g.delay, true
}

// groupFor picks the group whose agent token has the longest substring match
// against the user agent. The wildcard "*" matches anything but loses to any
// named match.
func (r Rules) groupFor(userAgent string) (group, bool) {
	ua := strings.ToLower(strings.TrimSpace(userAgent))
	bestIdx := -1
	bestScore := -1
	for i, g := range r.groups {
		for _, a := range g.agents {
			token := strings.TrimSpace(a)
			var score int
			switch {
			case token == "*":
				score = 0
			case token != "" && strings.Contains(ua, token):
				score = len(token)
			default:
				continue
			}
			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}
	}
	if bestIdx < 0 {
		return group{}, false
	}
	return r.groups[bestIdx], true
}

// patternMatches anchors the robots pattern at the start of the path, with
// '*' matching any run of characters and a trailing '$' anchoring the end.
func patternMatches(pattern, path string) bool {
	anchored := strings.HasSuffix(pattern, "$")
	p := strings.TrimSuffix(pattern, "$")
	var b strings.Builder
	b.WriteString("^")
	for _, r := range p {
		if r == '*' {
			b.WriteString(".*")
		} else {
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	if anchored {
		b.WriteString("$")
	}
	re, err := regexp.Compile(b.String())
	if err != nil {
		return false
	}
	return re.MatchString(path)
}
