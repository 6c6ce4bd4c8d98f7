package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	auth "github.com/mind-engage/mindengage-qbank/internal/auth/middleware"
	"github.com/mind-engage/mindengage-qbank/internal/exam"
	"github.com/mind-engage/mindengage-qbank/internal/qbank"
	"github.com/mind-engage/mindengage-qbank/internal/qbank/parser"
	"github.com/mind-engage/mindengage-qbank/internal/rbac"
	"github.com/mind-engage/mindengage-qbank/internal/storage"
	syncx "github.com/mind-engage/mindengage-qbank/internal/sync"
)

const bank = `1. 犬瘟热的病原是
A. 细菌
B. 病毒
答案：B
解析：病毒性疾病
2. 下列属于反刍动物的是
A. 牛
B. 犬
C. 羊
答案：AC
`

type testServer struct {
	t       *testing.T
	handler http.Handler
	auth    *auth.AuthService
}

func newTestServer(t *testing.T, maxUpload int64) *testServer {
	t.Helper()
	store := exam.NewInMemoryStore()
	blobs := storage.NewMemStore()
	svc, err := qbank.NewService(store, blobs, nil, parser.Options{}, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	a := auth.NewAuthService("test-secret")
	r := chi.NewRouter()
	Mount(r, Deps{
		Auth:        a,
		Login:       auth.LoginConfig{DevLogin: true},
		EnableLogin: true,
		Store:       store,
		Blobs:       blobs,
		Importer:    svc,
		MaxUpload:   maxUpload,
	})
	return &testServer{t: t, handler: r, auth: a}
}

func (s *testServer) token(role string) string {
	tok, err := s.auth.IssueJWT(role+"-user", role)
	if err != nil {
		s.t.Fatalf("IssueJWT: %v", err)
	}
	return tok
}

func (s *testServer) do(method, path, role string, body io.Reader, ctype string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if role != "" {
		req.Header.Set("Authorization", "Bearer "+s.token(role))
	}
	if ctype != "" {
		req.Header.Set("Content-Type", ctype)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func multipartBody(t *testing.T, files map[string][2]string, fields map[string]string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for field, f := range files {
		w, err := mw.CreateFormFile(field, f[0])
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		_, _ = io.WriteString(w, f[1])
	}
	for k, v := range fields {
		_ = mw.WriteField(k, v)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestImportFlow(t *testing.T) {
	s := newTestServer(t, 1<<20)

	body, ctype := multipartBody(t,
		map[string][2]string{"file": {"bank.txt", bank}},
		map[string]string{"title": "Vet mock exam"})
	rec := s.do(http.MethodPost, "/imports", rbac.RoleTeacher, body, ctype)
	if rec.Code != http.StatusCreated {
		t.Fatalf("import: %d %s", rec.Code, rec.Body.String())
	}
	var rep qbank.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &rep); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if rep.Questions != 2 || rep.ExamID == "" {
		t.Fatalf("report = %+v", rep)
	}

	rec = s.do(http.MethodGet, "/imports/"+rep.RunID, rbac.RoleTeacher, nil, "")
	var run exam.ImportRun
	if rec.Code != http.StatusOK || json.Unmarshal(rec.Body.Bytes(), &run) != nil || run.CreatedBy != "teacher-user" {
		t.Fatalf("get run: %d %s", rec.Code, rec.Body.String())
	}
	rec = s.do(http.MethodGet, "/imports/"+rep.RunID+"/source", rbac.RoleTeacher, nil, "")
	if rec.Code != http.StatusOK || rec.Body.String() != bank {
		t.Fatalf("source: %d %q", rec.Code, rec.Body.String())
	}
	if rec := s.do(http.MethodGet, "/imports/missing", rbac.RoleTeacher, nil, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("missing run: %d", rec.Code)
	}

	rec = s.do(http.MethodGet, "/exams?q=mock", rbac.RoleStudent, nil, "")
	var list []exam.ExamSummary
	if rec.Code != http.StatusOK || json.Unmarshal(rec.Body.Bytes(), &list) != nil || len(list) != 1 || list[0].QuestionCount != 2 {
		t.Fatalf("list: %d %s", rec.Code, rec.Body.String())
	}

	var ex exam.Exam
	rec = s.do(http.MethodGet, "/exams/"+rep.ExamID, rbac.RoleStudent, nil, "")
	if rec.Code != http.StatusOK || json.Unmarshal(rec.Body.Bytes(), &ex) != nil {
		t.Fatalf("student get: %d %s", rec.Code, rec.Body.String())
	}
	if len(ex.Questions[0].AnswerKey) != 0 || ex.Questions[0].Explanation != "" {
		t.Fatalf("student view leaks answers: %+v", ex.Questions[0])
	}
	rec = s.do(http.MethodGet, "/exams/"+rep.ExamID, rbac.RoleTeacher, nil, "")
	ex = exam.Exam{}
	if rec.Code != http.StatusOK || json.Unmarshal(rec.Body.Bytes(), &ex) != nil || strings.Join(ex.Questions[0].AnswerKey, "") != "B" {
		t.Fatalf("teacher get: %d %s", rec.Code, rec.Body.String())
	}
	if rec := s.do(http.MethodGet, "/exams/nope", rbac.RoleTeacher, nil, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("missing exam: %d", rec.Code)
	}

	rec = s.do(http.MethodGet, "/exams/"+rep.ExamID+"/export", rbac.RoleTeacher, nil, "")
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "application/zip" {
		t.Fatalf("qti export: %d %v", rec.Code, rec.Header())
	}
	rec = s.do(http.MethodGet, "/exams/"+rep.ExamID+"/export?format=sql", rbac.RoleTeacher, nil, "")
	if rec.Code != http.StatusOK || strings.Count(rec.Body.String(), "INSERT INTO vet_exam_questions") != 2 {
		t.Fatalf("sql export: %d %s", rec.Code, rec.Body.String())
	}
	if rec := s.do(http.MethodGet, "/exams/"+rep.ExamID+"/export?format=pdf", rbac.RoleTeacher, nil, ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("pdf export: %d", rec.Code)
	}
	if rec := s.do(http.MethodGet, "/exams/"+rep.ExamID+"/export", rbac.RoleStudent, nil, ""); rec.Code != http.StatusForbidden {
		t.Fatalf("student export: %d", rec.Code)
	}
}

func TestPreviewWithKeyText(t *testing.T) {
	s := newTestServer(t, 1<<20)
	body, ctype := multipartBody(t,
		map[string][2]string{"file": {"bank.md", "1. stem\nA. x\nB. y\n"}},
		map[string]string{"key_text": "1. B"})
	rec := s.do(http.MethodPost, "/imports/preview", rbac.RoleTeacher, body, ctype)
	if rec.Code != http.StatusOK {
		t.Fatalf("preview: %d %s", rec.Code, rec.Body.String())
	}
	var res parser.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(res.Questions) != 1 || res.Questions[0].Answer() != "B" {
		t.Fatalf("result = %+v", res)
	}
}

func TestImportErrors(t *testing.T) {
	s := newTestServer(t, 2048)
	cases := []struct {
		name   string
		role   string
		files  map[string][2]string
		fields map[string]string
		want   int
	}{
		{"no token", "", map[string][2]string{"file": {"a.txt", bank}}, nil, http.StatusUnauthorized},
		{"student", rbac.RoleStudent, map[string][2]string{"file": {"a.txt", bank}}, nil, http.StatusForbidden},
		{"no file", rbac.RoleTeacher, nil, map[string]string{"title": "x"}, http.StatusBadRequest},
		{"unsupported", rbac.RoleTeacher, map[string][2]string{"file": {"a.pdf", "%PDF"}}, nil, http.StatusUnsupportedMediaType},
		{"corrupt docx", rbac.RoleTeacher, map[string][2]string{"file": {"a.docx", "not a zip"}}, nil, http.StatusUnprocessableEntity},
		{"bad strategy", rbac.RoleTeacher, map[string][2]string{"file": {"a.txt", bank}}, map[string]string{"strategy": "zigzag"}, http.StatusBadRequest},
		{"bad subject", rbac.RoleTeacher, map[string][2]string{"file": {"a.txt", bank}}, map[string]string{"default_subject": "astronomy"}, http.StatusBadRequest},
		{"too large", rbac.RoleTeacher, map[string][2]string{"file": {"a.txt", strings.Repeat(bank, 30)}}, nil, http.StatusRequestEntityTooLarge},
	}
	for _, tc := range cases {
		body, ctype := multipartBody(t, tc.files, tc.fields)
		rec := s.do(http.MethodPost, "/imports", tc.role, body, ctype)
		if rec.Code != tc.want {
			t.Fatalf("%s: status %d, want %d (%s)", tc.name, rec.Code, tc.want, rec.Body.String())
		}
	}
}

func TestSubjectsAndLogin(t *testing.T) {
	s := newTestServer(t, 0)
	rec := s.do(http.MethodGet, "/subjects", rbac.RoleStudent, nil, "")
	var tax parser.Taxonomy
	if rec.Code != http.StatusOK || json.Unmarshal(rec.Body.Bytes(), &tax) != nil || len(tax.Canonical) != 4 {
		t.Fatalf("subjects: %d %s", rec.Code, rec.Body.String())
	}

	rec = s.do(http.MethodPost, "/auth/login", "", strings.NewReader(`{"username":"t","password":"t"}`), "application/json")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "access_token") {
		t.Fatalf("login: %d %s", rec.Code, rec.Body.String())
	}
	if rec := s.do(http.MethodGet, "/healthz", "", nil, ""); rec.Code != http.StatusOK {
		t.Fatalf("healthz: %d", rec.Code)
	}
}

type stubFeed struct{ after int64 }

func (f *stubFeed) Since(_ context.Context, after int64, limit int) ([]syncx.Event, error) {
	f.after = after
	return []syncx.Event{{Seq: after + 1, Type: syncx.EventQuestionsImported, Key: "run-1"}}, nil
}

func TestEvents(t *testing.T) {
	feed := &stubFeed{}
	svc, err := qbank.NewService(exam.NewInMemoryStore(), nil, nil, parser.Options{}, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	a := auth.NewAuthService("test-secret")
	r := chi.NewRouter()
	Mount(r, Deps{Auth: a, Store: exam.NewInMemoryStore(), Importer: svc, Events: feed})
	s := &testServer{t: t, handler: r, auth: a}

	rec := s.do(http.MethodGet, "/events?after=7", rbac.RoleTeacher, nil, "")
	var events []syncx.Event
	if rec.Code != http.StatusOK || json.Unmarshal(rec.Body.Bytes(), &events) != nil || len(events) != 1 || events[0].Seq != 8 || feed.after != 7 {
		t.Fatalf("events: %d %s", rec.Code, rec.Body.String())
	}
	if rec := s.do(http.MethodGet, "/events?after=x", rbac.RoleTeacher, nil, ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad after: %d", rec.Code)
	}
	if rec := s.do(http.MethodGet, "/events", rbac.RoleStudent, nil, ""); rec.Code != http.StatusForbidden {
		t.Fatalf("student events: %d", rec.Code)
	}
	if rec := s.do(http.MethodPost, "/auth/login", "", strings.NewReader(`{}`), "application/json"); rec.Code != http.StatusNotFound && rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("login should be disabled: %d", rec.Code)
	}
}
