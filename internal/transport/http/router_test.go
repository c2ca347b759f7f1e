package httptransport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/girishmungarach/doneby-platform-sub001/internal/activity"
	"github.com/girishmungarach/doneby-platform-sub001/internal/auth"
	"github.com/girishmungarach/doneby-platform-sub001/internal/job"
	jobHandler "github.com/girishmungarach/doneby-platform-sub001/internal/job/handler"
	"github.com/girishmungarach/doneby-platform-sub001/internal/notification"
	notificationHandler "github.com/girishmungarach/doneby-platform-sub001/internal/notification/handler"
	"github.com/girishmungarach/doneby-platform-sub001/internal/platform/logger"
	"github.com/girishmungarach/doneby-platform-sub001/internal/profile"
	profileHandler "github.com/girishmungarach/doneby-platform-sub001/internal/profile/handler"
	"github.com/girishmungarach/doneby-platform-sub001/internal/timeline"
	timelineHandler "github.com/girishmungarach/doneby-platform-sub001/internal/timeline/handler"
	"github.com/girishmungarach/doneby-platform-sub001/internal/verification"
	verificationHandler "github.com/girishmungarach/doneby-platform-sub001/internal/verification/handler"
)

// RouterSuite drives the full API surface over in-memory stores, the way a
// client would.
type RouterSuite struct {
	suite.Suite
	server *httptest.Server

	requesterToken string
	verifierToken  string
	verifierID     string
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	log := logger.New(logger.ParseLevel("error"))
	tokens := auth.NewTokenService("router-test-key", "doneby-test")

	timelineSvc, err := timeline.New(timeline.NewInMemoryStore(), timeline.WithLogger(log))
	s.Require().NoError(err)

	dispatcher := notification.NewDispatcher(notification.NewInMemoryStore(), notification.WithLogger(log))

	verificationSvc, err := verification.New(
		verification.NewInMemoryStore(),
		activity.NewRecorder(activity.NewInMemoryStore(), activity.WithLogger(log)),
		verification.WithNotifier(dispatcher),
		verification.WithTimeline(timelineSvc),
		verification.WithLogger(log),
	)
	s.Require().NoError(err)

	profileSvc, err := profile.New(profile.NewInMemoryStore(), tokens, profile.WithLogger(log))
	s.Require().NoError(err)

	jobSvc, err := job.New(job.NewInMemoryStore(), job.WithLogger(log))
	s.Require().NoError(err)

	profiles := profileHandler.New(profileSvc, log)
	router := NewRouter(Deps{
		Tokens: tokens,
		Logger: log,
		Public: []PublicRegistrar{profiles},
		Secured: []Registrar{
			profiles,
			timelineHandler.New(timelineSvc, log),
			verificationHandler.New(verificationSvc, log),
			notificationHandler.New(dispatcher, log),
			jobHandler.New(jobSvc, log),
		},
	})
	s.server = httptest.NewServer(router)
	s.T().Cleanup(s.server.Close)

	s.requesterToken = s.register("requester@example.com")
	s.verifierToken = s.register("verifier@example.com")
	s.verifierID = s.me(s.verifierToken)["id"].(string)
}

func (s *RouterSuite) do(method, path, token string, body any) (*http.Response, map[string]any) {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, s.server.URL+path, &buf)
	s.Require().NoError(err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.server.Client().Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	var decoded map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func (s *RouterSuite) doList(method, path, token string) (*http.Response, []map[string]any) {
	req, err := http.NewRequest(method, s.server.URL+path, nil)
	s.Require().NoError(err)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := s.server.Client().Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	var decoded []map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func (s *RouterSuite) register(address string) string {
	resp, _ := s.do(http.MethodPost, "/auth/register", "", map[string]any{
		"email":    address,
		"password": "a-long-password",
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	resp, body := s.do(http.MethodPost, "/auth/login", "", map[string]any{
		"email":    address,
		"password": "a-long-password",
	})
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	return body["token"].(string)
}

func (s *RouterSuite) me(token string) map[string]any {
	resp, body := s.do(http.MethodGet, "/me", token, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	return body
}

// startVerification creates a timeline entry and opens a verification on it
// with the verifier assigned, returning the verification body.
func (s *RouterSuite) startVerification() map[string]any {
	resp, entry := s.do(http.MethodPost, "/timeline", s.requesterToken, map[string]any{
		"kind":       "work",
		"title":      "Senior Engineer",
		"start_date": "2022-01-10T00:00:00Z",
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	resp, record := s.do(http.MethodPost, "/verifications", s.requesterToken, map[string]any{
		"timeline_entry_id": entry["id"],
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	resp, record = s.do(http.MethodPost, fmt.Sprintf("/verifications/%s/assign", record["id"]), s.requesterToken, map[string]any{
		"verifier_id":      s.verifierID,
		"expected_version": record["version"],
	})
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	return record
}

func (s *RouterSuite) TestUnauthenticatedRequestsAreRejected() {
	resp, _ := s.do(http.MethodGet, "/me", "", nil)
	s.Equal(http.StatusUnauthorized, resp.StatusCode)

	resp, _ = s.do(http.MethodPost, "/verifications", "", map[string]any{})
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *RouterSuite) TestHealthEndpointIsPublic() {
	resp, body := s.do(http.MethodGet, "/healthz", "", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("ok", body["status"])
}

func (s *RouterSuite) TestVerificationLifecycleOverHTTP() {
	record := s.startVerification()
	path := fmt.Sprintf("/verifications/%s", record["id"])

	resp, record := s.do(http.MethodPost, path+"/transition", s.verifierToken, map[string]any{
		"status":           "in_progress",
		"expected_version": record["version"],
	})
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Equal("in_progress", record["status"])

	resp, record = s.do(http.MethodPost, path+"/evidence", s.requesterToken, map[string]any{
		"type":             "document",
		"url":              "https://example.com/contract.pdf",
		"description":      "signed employment contract",
		"expected_version": record["version"],
	})
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Len(record["evidence"], 1)

	resp, record = s.do(http.MethodPost, path+"/transition", s.verifierToken, map[string]any{
		"status":           "rejected",
		"reason":           "Insufficient evidence provided",
		"expected_version": record["version"],
	})
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Equal("rejected", record["status"])

	// Appeal reopens the verification.
	resp, record = s.do(http.MethodPost, path+"/transition", s.requesterToken, map[string]any{
		"status":           "pending",
		"expected_version": record["version"],
	})
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Equal("pending", record["status"])

	resp, entries := s.doList(http.MethodGet, path+"/activities", s.requesterToken)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.NotEmpty(entries)
}

func (s *RouterSuite) TestTransitionErrorMapping() {
	record := s.startVerification()
	path := fmt.Sprintf("/verifications/%s/transition", record["id"])

	s.Run("illegal transition maps to 409", func() {
		resp, body := s.do(http.MethodPost, path, s.verifierToken, map[string]any{
			"status":           "completed",
			"expected_version": record["version"],
		})
		s.Equal(http.StatusConflict, resp.StatusCode)
		s.Equal("invalid_transition", body["error"])
	})

	s.Run("duplicate submission maps to a distinct no-op error", func() {
		resp, body := s.do(http.MethodPost, path, s.verifierToken, map[string]any{
			"status":           "pending",
			"expected_version": record["version"],
		})
		s.Equal(http.StatusConflict, resp.StatusCode)
		s.Equal("noop_transition", body["error"])
	})

	s.Run("stale version maps to a conflict", func() {
		resp, _ := s.do(http.MethodPost, path, s.verifierToken, map[string]any{
			"status":           "in_progress",
			"expected_version": record["version"],
		})
		s.Require().Equal(http.StatusOK, resp.StatusCode)

		resp, body := s.do(http.MethodPost, path, s.verifierToken, map[string]any{
			"status":           "cancelled",
			"expected_version": record["version"],
		})
		s.Equal(http.StatusConflict, resp.StatusCode)
		s.Equal("conflict", body["error"])
	})

	s.Run("outsider is forbidden", func() {
		outsider := s.register("outsider@example.com")
		resp, _ := s.do(http.MethodPost, path, outsider, map[string]any{
			"status":           "cancelled",
			"expected_version": 1,
		})
		s.Equal(http.StatusForbidden, resp.StatusCode)
	})
}

func (s *RouterSuite) TestNotificationsFlow() {
	record := s.startVerification()

	resp, _ := s.do(http.MethodPost, fmt.Sprintf("/verifications/%s/transition", record["id"]), s.verifierToken, map[string]any{
		"status":           "in_progress",
		"expected_version": record["version"],
	})
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	resp, count := s.do(http.MethodGet, "/notifications/unread-count", s.requesterToken, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Equal(float64(1), count["unread"])

	resp, notices := s.doList(http.MethodGet, "/notifications", s.requesterToken)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Require().Len(notices, 1)

	markPath := fmt.Sprintf("/notifications/%s/read", notices[0]["id"])

	// Another authenticated user cannot touch the requester's notification.
	resp, _ = s.do(http.MethodPost, markPath, s.verifierToken, nil)
	s.Equal(http.StatusNotFound, resp.StatusCode)

	resp, _ = s.do(http.MethodPost, markPath, s.requesterToken, nil)
	s.Equal(http.StatusNoContent, resp.StatusCode)

	// Marking twice is still fine.
	resp, _ = s.do(http.MethodPost, markPath, s.requesterToken, nil)
	s.Equal(http.StatusNoContent, resp.StatusCode)

	resp, count = s.do(http.MethodGet, "/notifications/unread-count", s.requesterToken, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Equal(float64(0), count["unread"])
}

func (s *RouterSuite) TestJobsFlow() {
	resp, posted := s.do(http.MethodPost, "/jobs", s.requesterToken, map[string]any{
		"title":   "Backend Engineer",
		"company": "Acme Corp",
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	resp, jobs := s.doList(http.MethodGet, "/jobs", s.verifierToken)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Len(jobs, 1)

	resp, _ = s.do(http.MethodPost, fmt.Sprintf("/jobs/%s/close", posted["id"]), s.verifierToken, nil)
	s.Equal(http.StatusForbidden, resp.StatusCode)

	resp, closed := s.do(http.MethodPost, fmt.Sprintf("/jobs/%s/close", posted["id"]), s.requesterToken, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Equal("closed", closed["status"])
}
