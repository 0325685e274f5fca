package http

import (
	"bytes"
	"context"
	"encoding/json"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/neurobridge-coursegen/internal/content/blockgen"
	"github.com/yungbote/neurobridge-coursegen/internal/course"
	"github.com/yungbote/neurobridge-coursegen/internal/gateway"
	httpH "github.com/yungbote/neurobridge-coursegen/internal/http/handlers"
	"github.com/yungbote/neurobridge-coursegen/internal/observability"
	"github.com/yungbote/neurobridge-coursegen/internal/realtime"
)

type fakeCourses struct {
	got course.Request
	ro  course.RunOptions
	err error
}

func (f *fakeCourses) Generate(ctx context.Context, req course.Request, ro course.RunOptions) (*course.Document, error) {
	f.got, f.ro = req, ro
	if f.err != nil {
		return nil, f.err
	}
	return &course.Document{Title: req.Title, Modules: []course.Module{{ModuleTitle: "M", ModuleOrder: 1, Lessons: []course.Lesson{{LessonTitle: "L", LessonOrder: 1}}}}}, nil
}

type fakeOutlines struct{ err error }

func (f *fakeOutlines) GenerateCourseOutline(ctx context.Context, req gateway.OutlineRequest) (*gateway.OutlineResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &gateway.OutlineResult{Course: json.RawMessage(`{"title":"` + req.CourseTitle + `"}`), TokensUsed: 9}, nil
}

func (f *fakeOutlines) GenerateCourseBlueprint(ctx context.Context, req gateway.BlueprintRequest) (*gateway.BlueprintResult, error) {
	return &gateway.BlueprintResult{Blueprint: json.RawMessage(`{"modules":[]}`)}, nil
}

type fakeBlocks struct{ calls int }

func (f *fakeBlocks) Generate(ctx context.Context, req blockgen.Request) (*blockgen.Result, error) {
	f.calls++
	return &blockgen.Result{Type: req.Kind.Type(), TemplateID: req.Kind.BlockVariant(), Content: "Cash flow basics", TokensUsed: 5}, nil
}

type testDeps struct {
	courses *fakeCourses
	outline *fakeOutlines
	blocks  *fakeBlocks
	status  httpH.StatusChecker
	metrics *observability.Metrics
}

func newTestRouter(t *testing.T, d testDeps) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	if d.courses == nil {
		d.courses = &fakeCourses{}
	}
	if d.outline == nil {
		d.outline = &fakeOutlines{}
	}
	if d.blocks == nil {
		d.blocks = &fakeBlocks{}
	}
	cfg := RouterConfig{
		Metrics:         d.metrics,
		HealthHandler:   httpH.NewHealthHandler("test"),
		CourseHandler:   httpH.NewCourseHandler(nil, d.courses, d.outline),
		BlockHandler:    httpH.NewBlockHandler(d.blocks, d.metrics),
		RealtimeHandler: httpH.NewRealtimeHandler(nil, realtime.NewSSEHub(nil)),
	}
	if d.status != nil {
		cfg.AIHandler = httpH.NewAIHandler(d.status)
	}
	return NewRouter(cfg)
}

func doJSON(r nethttp.Handler, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

type errorBody struct {
	Error struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var eb errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &eb); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}
	return eb
}

func TestHealthcheck(t *testing.T) {
	rec := doJSON(newTestRouter(t, testDeps{}), nethttp.MethodGet, "/healthcheck", "", nil)
	if rec.Code != nethttp.StatusOK || !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatalf("missing request id header")
	}
}

func TestGenerateCourseValidatesBody(t *testing.T) {
	r := newTestRouter(t, testDeps{})
	cases := []struct {
		body string
		code string
		msg  string
	}{
		{`{}`, "invalid_request", "title is required"},
		{`{"title":"Python","difficulty":"expert"}`, "invalid_request", "difficulty must be one of"},
		{`{"title":`, "invalid_json", "not valid JSON"},
	}
	for _, tc := range cases {
		rec := doJSON(r, nethttp.MethodPost, "/api/courses/generate", tc.body, nil)
		if rec.Code != nethttp.StatusBadRequest {
			t.Fatalf("%s: status=%d", tc.body, rec.Code)
		}
		eb := decodeError(t, rec)
		if eb.Error.Code != tc.code || !strings.Contains(eb.Error.Message, tc.msg) {
			t.Fatalf("%s: got %+v", tc.body, eb.Error)
		}
	}
}

func TestGenerateCoursePassesRequestThrough(t *testing.T) {
	courses := &fakeCourses{}
	r := newTestRouter(t, testDeps{courses: courses})
	rec := doJSON(r, nethttp.MethodPost, "/api/courses/generate",
		`{"title":"Python Programming Fundamentals","difficulty":"beginner","objectives":["a","b"],"thumbnails":false,"channel":"job-7"}`, nil)
	if rec.Code != nethttp.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	if courses.got.Title != "Python Programming Fundamentals" || courses.got.Difficulty != "beginner" || len(courses.got.Objectives) != 2 {
		t.Fatalf("request=%+v", courses.got)
	}
	if courses.ro.Channel != "job-7" || courses.ro.Thumbnails == nil || *courses.ro.Thumbnails {
		t.Fatalf("run options=%+v", courses.ro)
	}
	var body struct {
		Course course.Document `json:"course"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Course.Modules[0].Lessons[0].LessonTitle != "L" {
		t.Fatalf("course=%+v", body.Course)
	}
}

func TestGenerateCourseAbortMapsToTimeout(t *testing.T) {
	r := newTestRouter(t, testDeps{courses: &fakeCourses{err: context.DeadlineExceeded}})
	rec := doJSON(r, nethttp.MethodPost, "/api/courses/generate", `{"title":"T"}`, nil)
	if rec.Code != nethttp.StatusGatewayTimeout {
		t.Fatalf("status=%d", rec.Code)
	}
}

func TestOutlineMapsGatewayErrors(t *testing.T) {
	r := newTestRouter(t, testDeps{outline: &fakeOutlines{err: &gateway.Error{Kind: gateway.KindQuotaExceeded}}})
	rec := doJSON(r, nethttp.MethodPost, "/api/courses/outline", `{"course_title":"Intro to Law"}`, nil)
	if rec.Code != nethttp.StatusPaymentRequired {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	if eb := decodeError(t, rec); eb.Error.Code != "quota_exceeded" {
		t.Fatalf("error=%+v", eb.Error)
	}

	r = newTestRouter(t, testDeps{})
	rec = doJSON(r, nethttp.MethodPost, "/api/courses/outline", `{"course_title":"Intro to Law","generate_type":"skeleton"}`, nil)
	if rec.Code != nethttp.StatusOK || !strings.Contains(rec.Body.String(), `"course":{"title":"Intro to Law"}`) {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestBlueprintRoute(t *testing.T) {
	rec := doJSON(newTestRouter(t, testDeps{}), nethttp.MethodPost, "/api/courses/blueprint", `{"course_title":"Data Compliance","module_count":3}`, nil)
	if rec.Code != nethttp.StatusOK || !strings.Contains(rec.Body.String(), `"blueprint":{"modules":[]}`) {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestGenerateBlock(t *testing.T) {
	blocks := &fakeBlocks{}
	metrics := observability.NewMetrics(nil)
	r := newTestRouter(t, testDeps{blocks: blocks, metrics: metrics})

	rec := doJSON(r, nethttp.MethodPost, "/api/blocks/generate", `{"type":"text","variant":"heading","prompt":"cash flow"}`, nil)
	if rec.Code != nethttp.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	var body struct {
		Block struct {
			ID      string `json:"id"`
			Type    string `json:"type"`
			Variant string `json:"variant"`
			Content string `json:"content"`
			Order   int    `json:"order"`
		} `json:"block"`
		TemplateID string `json:"templateId"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.HasPrefix(body.Block.ID, "text_") || body.Block.Content != "Cash flow basics" || body.TemplateID != "heading" || body.Block.Order != 1 {
		t.Fatalf("body=%+v", body)
	}

	for body, code := range map[string]string{
		`{"type":"hologram"}`:                 "unknown_block_type",
		`{"type":"text","variant":"banner"}`:  "unknown_block_variant",
		`{"type":"youtube","prompt":"intro"}`: "block_not_generated",
	} {
		rec := doJSON(r, nethttp.MethodPost, "/api/blocks/generate", body, nil)
		if rec.Code != nethttp.StatusBadRequest || decodeError(t, rec).Error.Code != code {
			t.Fatalf("%s: status=%d body=%s", body, rec.Code, rec.Body.String())
		}
	}
	if blocks.calls != 1 {
		t.Fatalf("generator calls=%d", blocks.calls)
	}

	rec = doJSON(r, nethttp.MethodGet, "/metrics", "", nil)
	if !strings.Contains(rec.Body.String(), `cg_block_generations_total{type="text",outcome="ok"} 1`) {
		t.Fatalf("metrics missing block series:\n%s", rec.Body.String())
	}
}

func TestStatusForwardsCallerToken(t *testing.T) {
	var gotAuth string
	backend := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"available":true,"openai":{"available":false}}}`))
	}))
	defer backend.Close()

	gw, err := gateway.New(gateway.Options{BaseURL: backend.URL, Token: "service-token"})
	if err != nil {
		t.Fatalf("gateway.New: %v", err)
	}
	r := newTestRouter(t, testDeps{status: gw})

	rec := doJSON(r, nethttp.MethodGet, "/api/ai/status?refresh=1", "", map[string]string{"Authorization": "Bearer user-token"})
	if rec.Code != nethttp.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	if gotAuth != "Bearer user-token" {
		t.Fatalf("backend saw Authorization=%q", gotAuth)
	}
	if !strings.Contains(rec.Body.String(), `"can_generate":false`) {
		t.Fatalf("body=%s", rec.Body.String())
	}

	rec = doJSON(r, nethttp.MethodGet, "/api/ai/status?refresh=1", "", nil)
	if rec.Code != nethttp.StatusOK || gotAuth != "Bearer service-token" {
		t.Fatalf("status=%d auth=%q", rec.Code, gotAuth)
	}
}
