package controllers

import (
	"bytes"
	"compress/gzip"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/fsdevblog/shortlinks/internal/models"
	"github.com/fsdevblog/shortlinks/internal/services"
	"github.com/fsdevblog/shortlinks/internal/services/smocks"
)

type LinksControllerSuite struct {
	suite.Suite
	linkMock *smocks.LinkMock
	pingMock *smocks.PingMock
	router   *gin.Engine
	baseURL  *url.URL
}

func (s *LinksControllerSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	s.linkMock = new(smocks.LinkMock)
	s.pingMock = new(smocks.PingMock)
	s.baseURL = &url.URL{Scheme: "http", Host: "test.com:8080"}
	s.router = SetupRouter(RouterParams{
		LinkService: s.linkMock,
		PingService: s.pingMock,
		BaseURL:     s.baseURL,
		Logger:      logger,
	})
}

func TestLinksControllerSuite(t *testing.T) {
	suite.Run(t, new(LinksControllerSuite))
}

func (s *LinksControllerSuite) TestIndex() {
	res := s.makeRequest(requestFields{Method: http.MethodGet, URL: "/"})
	defer res.Body.Close()

	s.Equal(http.StatusOK, res.StatusCode)
	body, _ := io.ReadAll(res.Body)
	s.Contains(string(body), "/create_url")
}

func (s *LinksControllerSuite) TestCreateFromQuery() {
	s.linkMock.On("Create", mock.Anything, "example.com", "").
		Return(&models.Link{ID: 125, Key: "cb", URL: "http://example.com"}, nil)
	s.linkMock.On("Create", mock.Anything, "https://example.org", "mysite").
		Return(nil, services.ErrKeyConflict)
	s.linkMock.On("Create", mock.Anything, "https://example.org", "my-site").
		Return(nil, services.ErrInvalidKey)
	s.linkMock.On("Create", mock.Anything, "http://bad_host", "").
		Return(nil, services.ErrInvalidURL)
	s.linkMock.On("Create", mock.Anything, "https://broken.org", "").
		Return(nil, services.ErrUnknown)

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "derived key",
			query:      "url=example.com",
			wantStatus: http.StatusCreated,
			wantBody:   "Created url: http://test.com:8080/cb",
		},
		{name: "missing url", query: "custom=abc", wantStatus: http.StatusBadRequest, wantBody: "Missing URL!"},
		{name: "blank url", query: "url=%20%20", wantStatus: http.StatusBadRequest, wantBody: "Missing URL!"},
		{
			name:       "taken key",
			query:      "url=https://example.org&custom=mysite",
			wantStatus: http.StatusConflict,
			wantBody:   "Custom url 'mysite' already exists! Try something else!",
		},
		{name: "invalid key", query: "url=https://example.org&custom=my-site", wantStatus: http.StatusUnprocessableEntity},
		{name: "invalid url", query: "url=http://bad_host", wantStatus: http.StatusUnprocessableEntity},
		{name: "storage failure", query: "url=https://broken.org", wantStatus: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			res := s.makeRequest(requestFields{Method: http.MethodGet, URL: "/create_url?" + tt.query})
			defer res.Body.Close()

			body, _ := io.ReadAll(res.Body)
			s.Equal(tt.wantStatus, res.StatusCode, string(body))
			if tt.wantBody != "" {
				s.Equal(tt.wantBody, string(body))
			}
		})
	}
}

func (s *LinksControllerSuite) TestShorten() {
	s.linkMock.On("Create", mock.Anything, "https://example.org", "mysite").
		Return(&models.Link{ID: 7, Key: "mysite", URL: "https://example.org"}, nil)
	s.linkMock.On("Create", mock.Anything, "https://example.org", "taken").
		Return(nil, services.ErrKeyConflict)

	tests := []struct {
		name       string
		body       string
		gzip       bool
		wantStatus int
		wantBody   string
	}{
		{
			name:       "created",
			body:       `{"url": "https://example.org", "custom": "mysite"}`,
			wantStatus: http.StatusCreated,
			wantBody:   `{"result":"http://test.com:8080/mysite","key":"mysite"}`,
		},
		{
			name:       "created gzip",
			body:       `{"url": "https://example.org", "custom": "mysite"}`,
			gzip:       true,
			wantStatus: http.StatusCreated,
			wantBody:   `{"result":"http://test.com:8080/mysite","key":"mysite"}`,
		},
		{
			name:       "conflict",
			body:       `{"url": "https://example.org", "custom": "taken"}`,
			wantStatus: http.StatusConflict,
			wantBody:   `{"error":"Custom url 'taken' already exists! Try something else!"}`,
		},
		{name: "bad json", body: `{"url": `, wantStatus: http.StatusBadRequest},
		{name: "missing url", body: `{"custom": "abc"}`, wantStatus: http.StatusBadRequest},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			res := s.makeRequest(requestFields{
				Method:      http.MethodPost,
				URL:         "/api/shorten",
				Body:        strings.NewReader(tt.body),
				ContentType: "application/json",
				Gzipped:     tt.gzip,
			})
			defer res.Body.Close()

			s.Equal(tt.wantStatus, res.StatusCode)
			body, err := readBody(res.Body, tt.gzip)
			s.Require().NoError(err)
			if tt.wantBody != "" {
				s.JSONEq(tt.wantBody, string(body))
			}
			if tt.gzip {
				s.Equal("gzip", res.Header.Get("Content-Encoding"))
			}
		})
	}
}

func (s *LinksControllerSuite) TestRedirect() {
	redirectTo := "https://example.org/some/path"
	s.linkMock.On("Resolve", mock.Anything, "mysite").
		Return(&models.Link{ID: 1, Key: "mysite", URL: redirectTo}, nil)
	s.linkMock.On("Resolve", mock.Anything, "unknown").
		Return(nil, services.ErrRecordNotFound)
	s.linkMock.On("Resolve", mock.Anything, "ghost").
		Return(nil, services.ErrInconsistentState)

	tests := []struct {
		name       string
		key        string
		gzip       bool
		wantStatus int
	}{
		{name: "found", key: "mysite", wantStatus: http.StatusFound},
		{name: "found gzip client", key: "mysite", gzip: true, wantStatus: http.StatusFound},
		{name: "not found", key: "unknown", wantStatus: http.StatusNotFound},
		{name: "inconsistent", key: "ghost", wantStatus: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			res := s.makeRequest(requestFields{Method: http.MethodGet, URL: "/" + tt.key, Gzipped: tt.gzip})
			defer res.Body.Close()

			s.Equal(tt.wantStatus, res.StatusCode)
			if tt.wantStatus == http.StatusFound {
				s.Equal(redirectTo, res.Header.Get("Location"))
				s.Empty(res.Header.Get("Content-Encoding"))
			} else {
				s.Empty(res.Header.Get("Location"))
			}
		})
	}
}

func (s *LinksControllerSuite) TestShow() {
	s.linkMock.On("Resolve", mock.Anything, "cb").
		Return(&models.Link{ID: 125, Key: "cb", URL: "http://example.com"}, nil)
	s.linkMock.On("Resolve", mock.Anything, "nope").
		Return(nil, services.ErrRecordNotFound)

	res := s.makeRequest(requestFields{Method: http.MethodGet, URL: "/api/links/cb"})
	defer res.Body.Close()
	body, _ := io.ReadAll(res.Body)
	s.Equal(http.StatusOK, res.StatusCode)
	s.JSONEq(`{"id":125,"key":"cb","url":"http://example.com"}`, string(body))

	res = s.makeRequest(requestFields{Method: http.MethodGet, URL: "/api/links/nope"})
	defer res.Body.Close()
	s.Equal(http.StatusNotFound, res.StatusCode)
}

func (s *LinksControllerSuite) TestPing() {
	s.pingMock.On("CheckConnection", mock.Anything).Return(nil).Once()
	s.pingMock.On("CheckConnection", mock.Anything).Return(errors.New("connection refused")).Once()

	res := s.makeRequest(requestFields{Method: http.MethodGet, URL: "/ping"})
	defer res.Body.Close()
	s.Equal(http.StatusOK, res.StatusCode)

	res = s.makeRequest(requestFields{Method: http.MethodGet, URL: "/ping"})
	defer res.Body.Close()
	s.Equal(http.StatusInternalServerError, res.StatusCode)
	s.pingMock.AssertExpectations(s.T())
}

func (s *LinksControllerSuite) TestShortURL_FromRequestHost() {
	s.linkMock.On("Create", mock.Anything, "example.com", "").
		Return(&models.Link{ID: 1, Key: "b", URL: "http://example.com"}, nil)

	router := SetupRouter(RouterParams{LinkService: s.linkMock, PingService: s.pingMock})
	request := httptest.NewRequest(http.MethodGet, "/create_url?url=example.com", nil)
	request.Host = "short.ly"
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	s.Equal(http.StatusCreated, recorder.Code)
	s.Equal("Created url: http://short.ly/b", recorder.Body.String())
}

type requestFields struct {
	Method      string
	URL         string
	Body        io.Reader
	ContentType string
	Gzipped     bool
}

// makeRequest вспомогательная функция создающая тестовый http запрос.
func (s *LinksControllerSuite) makeRequest(fields requestFields) *http.Response {
	body := fields.Body

	// Добавляем gzip сжатие тела запроса, если надо.
	if fields.Gzipped && fields.Body != nil {
		var gzipBuffer bytes.Buffer
		gzipW, gzErr := gzip.NewWriterLevel(&gzipBuffer, gzip.BestSpeed)
		s.Require().NoError(gzErr)
		_, copyErr := io.Copy(gzipW, fields.Body)
		s.Require().NoError(copyErr)
		s.Require().NoError(gzipW.Close())
		body = &gzipBuffer
	}

	request := httptest.NewRequest(fields.Method, fields.URL, body)
	if fields.ContentType != "" {
		request.Header.Set("Content-Type", fields.ContentType)
	}
	if fields.Gzipped {
		if fields.Body != nil {
			request.Header.Set("Content-Encoding", "gzip")
		}
		request.Header.Set("Accept-Encoding", "gzip")
	}

	recorder := httptest.NewRecorder()
	s.router.ServeHTTP(recorder, request)
	return recorder.Result()
}

// readBody Читает тело ответа, если тело сжатое - расжимает.
func readBody(r io.Reader, compressed bool) ([]byte, error) {
	if !compressed {
		return io.ReadAll(r)
	}
	gzr, err := gzip.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer gzr.Close()
	return io.ReadAll(gzr)
}
