package messaging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/workstack/org-messaging/internal"
	"github.com/workstack/org-messaging/internal/auth"
	"github.com/workstack/org-messaging/internal/directory"
	"github.com/workstack/org-messaging/internal/messaging"
	"github.com/workstack/org-messaging/internal/permission"
)

// Mock service for handler testing
type mockMessagingService struct {
	message   *messaging.Message
	thread    *messaging.Thread
	broadcast *messaging.BroadcastResult
	verdict   permission.Verdict
	err       error

	gotLimit  int
	gotOffset int
}

func (m *mockMessagingService) SendDirect(ctx context.Context, senderID int64, dto messaging.SendDirectDTO) (*messaging.Message, error) {
	return m.message, m.err
}

func (m *mockMessagingService) SendToManager(ctx context.Context, senderID int64, dto messaging.SendToManagerDTO) (*messaging.Message, error) {
	return m.message, m.err
}

func (m *mockMessagingService) SendToHR(ctx context.Context, senderID int64, dto messaging.SendToHRDTO) (*messaging.Message, error) {
	return m.message, m.err
}

func (m *mockMessagingService) SendToDepartment(ctx context.Context, senderID int64, dto messaging.BroadcastDTO) (*messaging.BroadcastResult, error) {
	return m.broadcast, m.err
}

func (m *mockMessagingService) EscalateIssue(ctx context.Context, senderID int64, dto messaging.EscalateDTO) (*messaging.Message, error) {
	return m.message, m.err
}

func (m *mockMessagingService) ReadMessage(ctx context.Context, employeeID int64, messageID string) (*messaging.Thread, error) {
	return m.thread, m.err
}

func (m *mockMessagingService) Reply(ctx context.Context, employeeID int64, messageID string, dto messaging.ReplyDTO) (*messaging.Message, error) {
	return m.message, m.err
}

func (m *mockMessagingService) ListInbox(ctx context.Context, employeeID int64, filter messaging.InboxFilter, limit, offset int) ([]*messaging.Message, error) {
	m.gotLimit = limit
	m.gotOffset = offset
	return nil, m.err
}

func (m *mockMessagingService) ListSent(ctx context.Context, employeeID int64, limit, offset int) ([]*messaging.Message, error) {
	m.gotLimit = limit
	m.gotOffset = offset
	return nil, m.err
}

func (m *mockMessagingService) CountUnread(ctx context.Context, employeeID int64) (int64, error) {
	return 3, m.err
}

func (m *mockMessagingService) CheckCanMessage(ctx context.Context, senderID, targetID int64) (permission.Verdict, error) {
	return m.verdict, m.err
}

var _ = Describe("MessagingHandler", func() {
	var (
		handler *messaging.Handler
		service *mockMessagingService
		caller  *directory.Employee
	)

	authedRequest := func(method, target string, body interface{}) *http.Request {
		var buf bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
		}
		req := httptest.NewRequest(method, target, &buf)
		return req.WithContext(auth.ContextWithEmployee(req.Context(), caller))
	}

	withURLParam := func(req *http.Request, key, value string) *http.Request {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add(key, value)
		return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	BeforeEach(func() {
		service = &mockMessagingService{}
		handler = messaging.NewHandler(service)
		caller = &directory.Employee{ID: 1, Name: "Tom Becker", Email: "tom@example.com"}
	})

	Describe("SendDirect", func() {
		It("should return 201 with the created message", func() {
			senderID := int64(1)
			service.message = &messaging.Message{ID: "msg-1", SenderID: &senderID, RecipientID: 2, Content: "hi"}

			req := authedRequest(http.MethodPost, "/api/v1/messages/direct", messaging.SendDirectDTO{RecipientID: 2, Content: "hi"})
			rec := httptest.NewRecorder()

			handler.SendDirect(rec, req)

			Expect(rec.Code).To(Equal(http.StatusCreated))
			var got messaging.Message
			Expect(json.Unmarshal(rec.Body.Bytes(), &got)).To(Succeed())
			Expect(got.ID).To(Equal("msg-1"))
		})

		It("should return 403 with reason and suggestion when the send is denied", func() {
			service.err = internal.NewMessageNotAllowedError(
				"employees in Engineering are not allowed to message this recipient directly",
				"ask your manager to pass the message on, or contact HR",
			)

			req := authedRequest(http.MethodPost, "/api/v1/messages/direct", messaging.SendDirectDTO{RecipientID: 2, Content: "hi"})
			rec := httptest.NewRecorder()

			handler.SendDirect(rec, req)

			Expect(rec.Code).To(Equal(http.StatusForbidden))
			Expect(rec.Body.String()).To(ContainSubstring("MESSAGE_NOT_ALLOWED"))
			Expect(rec.Body.String()).To(ContainSubstring("contact HR"))
		})

		It("should return 401 without an authenticated caller", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/messages/direct", bytes.NewBufferString("{}"))
			rec := httptest.NewRecorder()

			handler.SendDirect(rec, req)

			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		})

		It("should return 400 for a malformed body", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/messages/direct", bytes.NewBufferString("{not json"))
			req = req.WithContext(auth.ContextWithEmployee(req.Context(), caller))
			rec := httptest.NewRecorder()

			handler.SendDirect(rec, req)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("SendToManager", func() {
		It("should return 400 when no manager is assigned", func() {
			service.err = internal.ErrNoManagerAssigned

			req := authedRequest(http.MethodPost, "/api/v1/messages/manager", messaging.SendToManagerDTO{Content: "hi"})
			rec := httptest.NewRecorder()

			handler.SendToManager(rec, req)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(rec.Body.String()).To(ContainSubstring("NO_MANAGER_ASSIGNED"))
		})
	})

	Describe("ReadMessage", func() {
		It("should return the thread for an owned message", func() {
			senderID := int64(2)
			service.thread = &messaging.Thread{
				Message: &messaging.Message{ID: "msg-1", SenderID: &senderID, RecipientID: 1, Status: messaging.StatusRead},
				Replies: []*messaging.Message{},
			}

			req := withURLParam(authedRequest(http.MethodPost, "/api/v1/messages/msg-1/read", nil), "id", "msg-1")
			rec := httptest.NewRecorder()

			handler.ReadMessage(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring("msg-1"))
		})

		It("should return 404 for someone else's message", func() {
			service.err = internal.ErrMessageNotFound

			req := withURLParam(authedRequest(http.MethodPost, "/api/v1/messages/msg-1/read", nil), "id", "msg-1")
			rec := httptest.NewRecorder()

			handler.ReadMessage(rec, req)

			Expect(rec.Code).To(Equal(http.StatusNotFound))
		})
	})

	Describe("ListInbox", func() {
		It("should pass default pagination when none is given", func() {
			req := authedRequest(http.MethodGet, "/api/v1/messages/inbox", nil)
			rec := httptest.NewRecorder()

			handler.ListInbox(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(service.gotLimit).To(Equal(20))
			Expect(service.gotOffset).To(Equal(0))
		})

		It("should honor limit and offset query parameters", func() {
			req := authedRequest(http.MethodGet, "/api/v1/messages/inbox?limit=50&offset=40", nil)
			rec := httptest.NewRecorder()

			handler.ListInbox(rec, req)

			Expect(service.gotLimit).To(Equal(50))
			Expect(service.gotOffset).To(Equal(40))
		})

		It("should clamp an oversized limit to the page cap", func() {
			req := authedRequest(http.MethodGet, "/api/v1/messages/inbox?limit=500", nil)
			rec := httptest.NewRecorder()

			handler.ListInbox(rec, req)

			Expect(service.gotLimit).To(Equal(100))
		})

		It("should ignore malformed or negative pagination values", func() {
			req := authedRequest(http.MethodGet, "/api/v1/messages/inbox?limit=abc&offset=-5", nil)
			rec := httptest.NewRecorder()

			handler.ListInbox(rec, req)

			Expect(service.gotLimit).To(Equal(20))
			Expect(service.gotOffset).To(Equal(0))
		})
	})

	Describe("CountUnread", func() {
		It("should return the unread count", func() {
			req := authedRequest(http.MethodGet, "/api/v1/messages/unread-count", nil)
			rec := httptest.NewRecorder()

			handler.CountUnread(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring(`"unread":3`))
		})
	})

	Describe("CheckCanMessage", func() {
		It("should return the verdict", func() {
			service.verdict = permission.Verdict{Allowed: true, MatchedRule: permission.RuleSameDepartment}

			req := withURLParam(authedRequest(http.MethodGet, "/api/v1/contacts/2/can-message", nil), "id", "2")
			rec := httptest.NewRecorder()

			handler.CheckCanMessage(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring("same_department"))
		})

		It("should return 400 for a non-numeric id", func() {
			req := withURLParam(authedRequest(http.MethodGet, "/api/v1/contacts/abc/can-message", nil), "id", "abc")
			rec := httptest.NewRecorder()

			handler.CheckCanMessage(rec, req)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})
	})
})
