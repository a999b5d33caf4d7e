package analyze

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/gaurav-prasanna/reportpipe/config"
	"github.com/gaurav-prasanna/reportpipe/core"
	"github.com/gaurav-prasanna/reportpipe/core/extract"
)

type fakeModel struct {
	replies []string
	errs    []error
	calls   int
	last    []*schema.Message
}

func (m *fakeModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	i := m.calls
	m.calls++
	m.last = input
	if i < len(m.errs) && m.errs[i] != nil {
		return nil, m.errs[i]
	}
	reply := ""
	if i < len(m.replies) {
		reply = m.replies[i]
	}
	return &schema.Message{Role: schema.Assistant, Content: reply}, nil
}

const csvRaw = "a,b,c\nApple,10,Fruit\nCarrot,5,Veg\n"

func TestAnalyzeLocalOnly(t *testing.T) {
	got, err := New().AnalyzeAndStructure(context.Background(), csvRaw, "http://x/a.csv")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, extract.Extract(csvRaw, "http://x/a.csv")) {
		t.Errorf("local analysis differs from extraction: %+v", got)
	}
}

func TestAnalyzeEnriches(t *testing.T) {
	m := &fakeModel{replies: []string{"```json\n{\"title\": \"Produce Prices\", \"summary\": \"Apples cost more.\"}\n```"}}
	a := New(WithModel(m, "test-model", nil))

	got, err := a.AnalyzeAndStructure(context.Background(), csvRaw, "http://x/a.csv")
	if err != nil {
		t.Fatal(err)
	}
	local := extract.Extract(csvRaw, "http://x/a.csv")

	if got.Title != "Produce Prices" || got.Summary != "Apples cost more." {
		t.Errorf("title/summary = %q / %q", got.Title, got.Summary)
	}
	if got.Metadata["enrichedBy"] != "test-model" {
		t.Errorf("enrichedBy = %v", got.Metadata["enrichedBy"])
	}
	if !reflect.DeepEqual(got.DataPoints, local.DataPoints) || got.DataType != local.DataType {
		t.Error("enrichment altered data points or data type")
	}
	if len(m.last) != 2 || m.last[0].Role != schema.System || !strings.Contains(m.last[1].Content, "Apple,10,Fruit") {
		t.Errorf("unexpected prompt: %+v", m.last)
	}
}

func TestAnalyzeKeepsLocalOnPartialReply(t *testing.T) {
	m := &fakeModel{replies: []string{`{"title": "", "summary": "Better summary"}`}}
	got, _ := New(WithModel(m, "m", nil)).AnalyzeAndStructure(context.Background(), csvRaw, "")
	if got.Title != "CSV Data Analysis" || got.Summary != "Better summary" {
		t.Errorf("title/summary = %q / %q", got.Title, got.Summary)
	}
}

func TestAnalyzeFallsBackOnModelError(t *testing.T) {
	m := &fakeModel{errs: []error{errors.New("boom")}}
	got, err := New(WithModel(m, "m", nil)).AnalyzeAndStructure(context.Background(), csvRaw, "")
	if err != nil {
		t.Fatalf("err = %v, want nil", err)
	}
	if got.Title != "CSV Data Analysis" {
		t.Errorf("Title = %q", got.Title)
	}
	if _, ok := got.Metadata["enrichedBy"]; ok {
		t.Error("failed enrichment recorded enrichedBy")
	}
	if m.calls != 1 {
		t.Errorf("calls = %d, want 1", m.calls)
	}
}

func TestAnalyzeRetriesRateLimitAndBadJSON(t *testing.T) {
	m := &fakeModel{
		errs:    []error{errors.New("status 429: Too Many Requests")},
		replies: []string{"", "not json", `{"title": "T"}`},
	}
	a := New(WithModel(m, "m", nil))
	a.backoff = time.Millisecond

	got, _ := a.AnalyzeAndStructure(context.Background(), csvRaw, "")
	if got.Title != "T" || m.calls != 3 {
		t.Errorf("title = %q after %d calls", got.Title, m.calls)
	}
}

func TestPromptBodyUsesMarkdownForHTML(t *testing.T) {
	raw := `<html><head><title>T</title></head><body>
<nav class="menu"><a href="/">NAVLINK</a></nav>
<main><h1>Report</h1><p>Revenue grew <strong>strongly</strong> this quarter.</p></main>
</body></html>`
	body := New(WithPromptWords(100)).promptBody(raw, "http://example.com/r")
	if !strings.Contains(body, "Revenue grew") {
		t.Errorf("prompt body missing content: %q", body)
	}
	if strings.Contains(body, "<p>") {
		t.Errorf("prompt body still has HTML: %q", body)
	}
}

type stubNormalizer struct{ seen string }

func (n *stubNormalizer) Normalize(html string) (string, error) {
	n.seen = html
	return "NORMALIZED", nil
}

func TestPromptBodyUsesNormalizer(t *testing.T) {
	n := &stubNormalizer{}
	a := New(withNormalizer(n))

	if got := a.promptBody("<html><body><p>Hello there</p></body></html>", ""); got != "NORMALIZED" {
		t.Errorf("promptBody = %q", got)
	}
	if !strings.Contains(n.seen, "Hello there") {
		t.Errorf("normalizer saw %q", n.seen)
	}
	if got := a.promptBody(csvRaw, ""); got != csvRaw {
		t.Errorf("non-HTML body was normalized: %q", got)
	}
}

func TestEnrichStopsBackoffOnCancel(t *testing.T) {
	m := &fakeModel{errs: []error{errors.New("status 429: Too Many Requests")}}
	a := New(WithModel(m, "m", nil))
	a.backoff = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	start := time.Now()
	_, err := a.enrich(ctx, csvRaw, extract.Extract(csvRaw, ""))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("backoff ignored cancellation, took %v", elapsed)
	}
	if m.calls != 1 {
		t.Errorf("calls = %d, want 1", m.calls)
	}
}

func TestStripNoise(t *testing.T) {
	out, err := stripNoise(`<body><nav>NAVLINK</nav><script>x()</script><article><p>Body text</p></article></body>`)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Body text") || strings.Contains(out, "NAVLINK") || strings.Contains(out, "x()") {
		t.Errorf("stripNoise = %q", out)
	}
	if !strings.HasPrefix(out, "<article>") {
		t.Errorf("container = %q, want article", out)
	}
}

func TestNewLimiter(t *testing.T) {
	l := NewLimiter(config.ConcurrencyConfig{QPS: 0, RPM: 60})
	if l.Burst() != 1 || l.Limit() != 1 {
		t.Errorf("limiter burst=%d limit=%v", l.Burst(), l.Limit())
	}
}

var _ core.Analyzer = (*Analyzer)(nil)
