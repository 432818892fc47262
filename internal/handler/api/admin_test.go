//go:build unit

package api_test

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"kilnhall/internal/handler/api"
	resdto "kilnhall/internal/handler/dto/response"
	"kilnhall/internal/usecase/commands"
	"kilnhall/internal/usecase/queries"
	"kilnhall/tests/common/httptest"
	commandsmock "kilnhall/tests/mock/commands"
	queriesmock "kilnhall/tests/mock/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type AdminHandlerTestSuite struct {
	suite.Suite
	router            *gin.Engine
	mockCtrl          *gomock.Controller
	mockQueue         *commandsmock.MockQueueCommands
	mockStoragePolicy *commandsmock.MockStoragePolicyCommands
	mockReads         *queriesmock.MockNotificationQueries
	handler           *api.AdminHandler
}

func (s *AdminHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockQueue = commandsmock.NewMockQueueCommands(s.mockCtrl)
	s.mockStoragePolicy = commandsmock.NewMockStoragePolicyCommands(s.mockCtrl)
	s.mockReads = queriesmock.NewMockNotificationQueries(s.mockCtrl)
	s.handler = api.NewAdminHandler(s.mockQueue, s.mockStoragePolicy, s.mockReads)

	s.router.POST("/admin/notifications/run", s.handler.RunNotifications)
	s.router.POST("/admin/storage-policy/run", s.handler.RunStoragePolicy)
	s.router.GET("/admin/jobs", s.handler.ListJobs)
	s.router.GET("/admin/dead-letters", s.handler.ListDeadLetters)
	s.router.GET("/admin/reservations/:id/audit", s.handler.GetReservationAudit)
}

func (s *AdminHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestAdminHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(AdminHandlerTestSuite))
}

func (s *AdminHandlerTestSuite) TestRunNotifications() {
	s.Run("success: returns 200 with processing stats", func() {
		s.mockQueue.EXPECT().
			ProcessDueJobs(gomock.Any()).
			Return(commands.ProcessStats{Picked: 5, Done: 3, Skipped: 1, Retried: 1}, nil)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/admin/notifications/run", nil, "")

		var resp resdto.ProcessStatsResponse
		httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &resp)
		s.Equal(5, resp.Picked)
		s.Equal(3, resp.Done)
		s.Equal(1, resp.Skipped)
		s.Equal(1, resp.Retried)
		s.Equal(0, resp.Failed)
	})

	s.Run("error: returns 500 when processing fails", func() {
		s.mockQueue.EXPECT().
			ProcessDueJobs(gomock.Any()).
			Return(commands.ProcessStats{}, errors.New("pool closed"))

		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/admin/notifications/run", nil, "")

		httptest.AssertErrorResponse(s.T(), w, http.StatusInternalServerError, "Internal server error")
	})
}

func (s *AdminHandlerTestSuite) TestRunStoragePolicy() {
	s.Run("success: returns 200 with sweep stats", func() {
		s.mockStoragePolicy.EXPECT().
			Sweep(gomock.Any()).
			Return(commands.SweepStats{Evaluated: 12, Transitions: 2, Reminders: 3}, nil)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/admin/storage-policy/run", nil, "")

		var resp resdto.SweepStatsResponse
		httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &resp)
		s.Equal(12, resp.Evaluated)
		s.Equal(2, resp.Transitions)
		s.Equal(3, resp.Reminders)
	})

	s.Run("error: returns 409 when a sweep is already running", func() {
		s.mockStoragePolicy.EXPECT().
			Sweep(gomock.Any()).
			Return(commands.SweepStats{}, commands.ErrSweepAlreadyRunning)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/admin/storage-policy/run", nil, "")

		httptest.AssertErrorResponse(s.T(), w, http.StatusConflict, "Sweep already running")
	})
}

func (s *AdminHandlerTestSuite) TestListJobs() {
	s.Run("success: defaults to queued status and limit 50", func() {
		jobs := []queries.JobView{
			{ID: uuid.New(), Kind: "reservation_status_changed", Status: "queued"},
		}

		s.mockReads.EXPECT().
			ListJobsByStatus(gomock.Any(), "queued", int32(50)).
			Return(jobs, nil)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/admin/jobs", nil, "")

		var resp struct {
			Jobs []queries.JobView `json:"jobs"`
		}
		httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &resp)
		s.Len(resp.Jobs, 1)
		s.Equal(jobs[0].ID, resp.Jobs[0].ID)
	})

	s.Run("success: passes explicit status and limit through", func() {
		s.mockReads.EXPECT().
			ListJobsByStatus(gomock.Any(), "failed", int32(10)).
			Return([]queries.JobView{}, nil)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/admin/jobs?status=failed&limit=10", nil, "")

		httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, nil)
	})

	s.Run("success: non-numeric limit falls back to 50", func() {
		s.mockReads.EXPECT().
			ListJobsByStatus(gomock.Any(), "queued", int32(50)).
			Return([]queries.JobView{}, nil)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/admin/jobs?limit=all", nil, "")

		httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, nil)
	})

	s.Run("error: returns 400 for unknown status", func() {
		s.mockReads.EXPECT().
			ListJobsByStatus(gomock.Any(), "sleeping", int32(50)).
			Return(nil, queries.ErrUnknownJobStatus)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/admin/jobs?status=sleeping", nil, "")

		httptest.AssertErrorResponse(s.T(), w, http.StatusBadRequest, "Unknown job status")
	})
}

func (s *AdminHandlerTestSuite) TestListDeadLetters() {
	s.Run("success: returns 200 with dead letters", func() {
		letters := []queries.DeadLetterView{
			{
				JobID:      uuid.New(),
				Kind:       "reservation_eta_shift",
				DedupeKey:  "resv:abc:eta:1",
				Attempts:   5,
				ErrorClass: "provider_5xx",
				FailedAt:   time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC),
			},
		}

		s.mockReads.EXPECT().
			ListDeadLetters(gomock.Any(), int32(50)).
			Return(letters, nil)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/admin/dead-letters", nil, "")

		var resp struct {
			DeadLetters []queries.DeadLetterView `json:"deadLetters"`
		}
		httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &resp)
		s.Len(resp.DeadLetters, 1)
		s.Equal("provider_5xx", resp.DeadLetters[0].ErrorClass)
	})

	s.Run("error: returns 500 when the read store fails", func() {
		s.mockReads.EXPECT().
			ListDeadLetters(gomock.Any(), int32(50)).
			Return(nil, errors.New("pool closed"))

		w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/admin/dead-letters", nil, "")

		httptest.AssertErrorResponse(s.T(), w, http.StatusInternalServerError, "Internal server error")
	})
}

func (s *AdminHandlerTestSuite) TestGetReservationAudit() {
	s.Run("success: returns 200 with audit entries", func() {
		reservationID := uuid.New()
		entries := []queries.AuditEntryView{
			{ID: 1, ReservationID: reservationID, Event: "pickup_ready"},
			{ID: 2, ReservationID: reservationID, Event: "reminder_scheduled_1"},
		}

		s.mockReads.EXPECT().
			ListReservationAudit(gomock.Any(), reservationID, int32(50)).
			Return(entries, nil)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/admin/reservations/"+reservationID.String()+"/audit", nil, "")

		var resp struct {
			Audit []queries.AuditEntryView `json:"audit"`
		}
		httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &resp)
		s.Len(resp.Audit, 2)
		s.Equal("pickup_ready", resp.Audit[0].Event)
	})

	s.Run("error: returns 400 for invalid reservation ID", func() {
		w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/admin/reservations/not-a-uuid/audit", nil, "")

		httptest.AssertErrorResponse(s.T(), w, http.StatusBadRequest, "Invalid reservation ID")
	})
}
