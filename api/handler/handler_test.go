package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nubngpi/resultscraper/cache"
	"github.com/nubngpi/resultscraper/extractor"
	"github.com/nubngpi/resultscraper/models"
	"github.com/nubngpi/resultscraper/scraper"
	"github.com/nubngpi/resultscraper/store"
)

const resultPage = `Roll Number
123456
Institution
Dhaka Polytechnic Institute
2022
2nd Semester
Referred
Chemistry Theory
GPA
N/A
1st Semester
Passed
GPA
3.80`

type fakeFetcher struct {
	text       string
	err        error
	calls      atomic.Int32
	regulation string
}

func (f *fakeFetcher) Fetch(_ context.Context, roll, regulation string) (*scraper.FetchResult, error) {
	f.calls.Add(1)
	f.regulation = regulation
	if f.err != nil {
		return nil, f.err
	}
	return &scraper.FetchResult{
		URL:        "https://btebresultszone.com/results/" + roll + "?regulation=" + regulation,
		Text:       f.text,
		EngineUsed: "http",
	}, nil
}

func (f *fakeFetcher) Stats() models.PoolStats {
	return models.PoolStats{MaxPages: 5, ActivePages: 1}
}

type failingStore struct{}

func (failingStore) Name() string { return "failing" }
func (failingStore) Close()       {}

func (failingStore) FindByRoll(context.Context, string) (*models.StudentRecord, error) {
	return nil, errors.New("connection refused")
}

func (failingStore) Insert(context.Context, *models.StudentRecord) error {
	return errors.New("connection refused")
}

func newRouter(f ResultFetcher, st store.Store, cc *cache.Cache) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", Root())
	r.GET("/api/v1/health", Health(f, st, time.Now()))
	r.GET("/student/:roll", Student(f, extractor.New(), st, cc, "2022"))
	r.POST("/students/post", PostStudent(st))
	return r
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestRoot(t *testing.T) {
	w := do(t, newRouter(&fakeFetcher{}, store.NewMemory(), nil), http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, Banner, w.Body.String())
}

func TestHealth(t *testing.T) {
	w := do(t, newRouter(&fakeFetcher{}, store.NewMemory(), nil), http.MethodGet, "/api/v1/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[models.HealthResponse](t, w)
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "memory", resp.Store)
	assert.Equal(t, 5, resp.PoolStats.MaxPages)
	assert.Equal(t, Version, resp.Version)
}

func TestStudent_FoundWithDefaults(t *testing.T) {
	f := &fakeFetcher{text: resultPage}
	w := do(t, newRouter(f, store.NewMemory(), nil), http.MethodGet, "/student/123456", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[models.StudentResponse](t, w)
	require.True(t, resp.Success)
	require.NotNil(t, resp.Data)
	assert.Equal(t, "Name", resp.Data.Name)
	assert.Equal(t, "no image", resp.Data.Img)
	assert.Equal(t, "123456", resp.Data.Roll)
	assert.Equal(t, "Dhaka Polytechnic Institute", resp.Data.Institute)
	assert.Equal(t, "2022", resp.Data.Regulation)
	require.Len(t, resp.Data.Semesters, 2)
	assert.Equal(t, []string{"Chemistry"}, resp.Data.Semesters[0].FailedSubjects)
	assert.Equal(t, "N/A", resp.Data.LatestGPA)
	assert.Equal(t, "Referred", resp.Data.LatestStatus)
	assert.Equal(t, "https://btebresultszone.com/results/123456?regulation=2022", resp.URL)
	assert.Empty(t, resp.CacheStatus)
	assert.Equal(t, "2022", f.regulation)
}

func TestStudent_MergesStoredRecord(t *testing.T) {
	st := store.NewMemory()
	require.NoError(t, st.Insert(context.Background(), &models.StudentRecord{
		Roll: "123456", Name: "Rahim Uddin", Img: "https://img.example/rahim.png",
	}))

	w := do(t, newRouter(&fakeFetcher{text: resultPage}, st, nil), http.MethodGet, "/student/123456", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[models.StudentResponse](t, w)
	assert.Equal(t, "Rahim Uddin", resp.Data.Name)
	assert.Equal(t, "https://img.example/rahim.png", resp.Data.Img)
}

func TestStudent_MetadataKeyedByRequestedRoll(t *testing.T) {
	st := store.NewMemory()
	require.NoError(t, st.Insert(context.Background(), &models.StudentRecord{
		Roll: "123456", Name: "Rahim", Img: "https://img.example/rahim.png",
	}))
	cc := cache.New(10, time.Hour)
	defer cc.Stop()

	// No "Roll Number" label and no bare six-digit line: the page roll is N/A.
	f := &fakeFetcher{text: "Board Roll: 123456\n1st Semester\nPassed\nGPA\n3.50"}
	r := newRouter(f, st, cc)

	for _, status := range []string{"miss", "hit"} {
		w := do(t, r, http.MethodGet, "/student/123456?max_age=60000", nil)
		require.Equal(t, http.StatusOK, w.Code)

		resp := decode[models.StudentResponse](t, w)
		assert.Equal(t, status, resp.CacheStatus)
		assert.Equal(t, models.NotAvailable, resp.Data.Roll)
		assert.Equal(t, "Rahim", resp.Data.Name)
		assert.Equal(t, "https://img.example/rahim.png", resp.Data.Img)
	}
}

func TestStudent_StoreFailureFallsBackToDefaults(t *testing.T) {
	w := do(t, newRouter(&fakeFetcher{text: resultPage}, failingStore{}, nil), http.MethodGet, "/student/123456", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[models.StudentResponse](t, w)
	assert.Equal(t, "Name", resp.Data.Name)
	assert.Equal(t, "no image", resp.Data.Img)
}

func TestStudent_Absent(t *testing.T) {
	tests := map[string]string{
		"marker":       "Roll Number\n123456\nSorry, no result",
		"no semesters": "Roll Number\n123456\nInstitution\nSomewhere",
		"empty page":   "",
	}
	for name, text := range tests {
		t.Run(name, func(t *testing.T) {
			w := do(t, newRouter(&fakeFetcher{text: text}, store.NewMemory(), nil), http.MethodGet, "/student/123456", nil)
			require.Equal(t, http.StatusNotFound, w.Code)

			resp := decode[models.StudentResponse](t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, models.ErrCodeNotFound, resp.Error.Code)
			assert.Equal(t, "Result not found or invalid roll", resp.Error.Message)
		})
	}
}

func TestStudent_InvalidInput(t *testing.T) {
	f := &fakeFetcher{text: resultPage}
	r := newRouter(f, store.NewMemory(), nil)

	for _, path := range []string{"/student/12345", "/student/abcdef", "/student/1234567", "/student/123456?regulation=1999"} {
		w := do(t, r, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
		assert.Equal(t, models.ErrCodeInvalidInput, decode[models.StudentResponse](t, w).Error.Code, path)
	}
	assert.Zero(t, f.calls.Load())
}

func TestStudent_RegulationOverride(t *testing.T) {
	f := &fakeFetcher{text: resultPage}
	w := do(t, newRouter(f, store.NewMemory(), nil), http.MethodGet, "/student/123456?regulation=2016", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2016", f.regulation)
}

func TestStudent_FetchErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"timeout", models.NewScrapeError(models.ErrCodeTimeout, "slow", context.DeadlineExceeded), http.StatusGatewayTimeout, models.ErrCodeTimeout},
		{"upstream", models.NewScrapeError(models.ErrCodeUpstream, "down", nil), http.StatusBadGateway, models.ErrCodeUpstream},
		{"browser", models.NewScrapeError(models.ErrCodeBrowserCrash, "gone", nil), http.StatusInternalServerError, models.ErrCodeBrowserCrash},
		{"untyped", errors.New("boom"), http.StatusInternalServerError, models.ErrCodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, newRouter(&fakeFetcher{err: tt.err}, store.NewMemory(), nil), http.MethodGet, "/student/123456", nil)
			assert.Equal(t, tt.status, w.Code)

			resp := decode[models.StudentResponse](t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestStudent_UntypedErrorCarriesDetails(t *testing.T) {
	w := do(t, newRouter(&fakeFetcher{err: errors.New("boom")}, store.NewMemory(), nil), http.MethodGet, "/student/123456", nil)
	resp := decode[models.StudentResponse](t, w)
	assert.Equal(t, "Failed to fetch result", resp.Error.Message)
	assert.Equal(t, "boom", resp.Error.Details)
}

func TestStudent_Cache(t *testing.T) {
	cc := cache.New(10, time.Hour)
	defer cc.Stop()
	f := &fakeFetcher{text: resultPage}
	r := newRouter(f, store.NewMemory(), cc)

	w := do(t, r, http.MethodGet, "/student/123456?max_age=60000", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "miss", decode[models.StudentResponse](t, w).CacheStatus)

	w = do(t, r, http.MethodGet, "/student/123456?max_age=60000", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[models.StudentResponse](t, w)
	assert.Equal(t, "hit", resp.CacheStatus)
	assert.Equal(t, "Dhaka Polytechnic Institute", resp.Data.Institute)
	assert.Equal(t, int32(1), f.calls.Load())

	// Without max_age the cache is bypassed.
	w = do(t, r, http.MethodGet, "/student/123456", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[models.StudentResponse](t, w).CacheStatus)
	assert.Equal(t, int32(2), f.calls.Load())
}

func TestStudent_AbsentIsNotCached(t *testing.T) {
	cc := cache.New(10, time.Hour)
	defer cc.Stop()
	r := newRouter(&fakeFetcher{text: "Sorry"}, store.NewMemory(), cc)

	w := do(t, r, http.MethodGet, "/student/123456?max_age=60000", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Zero(t, cc.Len())
}

func TestPostStudent(t *testing.T) {
	st := store.NewMemory()
	r := newRouter(&fakeFetcher{}, st, nil)

	w := do(t, r, http.MethodPost, "/students/post", map[string]string{
		"name": "Karim", "img": "https://img.example/k.png", "roll": "654321",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	resp := decode[models.StudentPostResponse](t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, &models.StudentRecord{Roll: "654321", Name: "Karim", Img: "https://img.example/k.png"}, resp.Student)

	rec, err := st.FindByRoll(context.Background(), "654321")
	require.NoError(t, err)
	assert.Equal(t, "Karim", rec.Name)
}

func TestPostStudent_MissingFields(t *testing.T) {
	r := newRouter(&fakeFetcher{}, store.NewMemory(), nil)

	for _, body := range []map[string]string{
		{"img": "i", "roll": "1"},
		{"name": "n", "roll": "1"},
		{"name": "n", "img": "i"},
		{"name": "", "img": "i", "roll": "1"},
	} {
		w := do(t, r, http.MethodPost, "/students/post", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, models.ErrCodeInvalidInput, decode[models.StudentPostResponse](t, w).Error.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/students/post", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPostStudent_StoreFailure(t *testing.T) {
	r := newRouter(&fakeFetcher{}, failingStore{}, nil)
	w := do(t, r, http.MethodPost, "/students/post", map[string]string{"name": "n", "img": "i", "roll": "1"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, models.ErrCodeStore, decode[models.StudentPostResponse](t, w).Error.Code)
}
