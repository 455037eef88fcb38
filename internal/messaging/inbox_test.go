package messaging_test

import (
	"context"
	"log/slog"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/workstack/org-messaging/internal"
	"github.com/workstack/org-messaging/internal/directory"
	"github.com/workstack/org-messaging/internal/messaging"
	"github.com/workstack/org-messaging/internal/permission"
)

var _ = Describe("Inbox", func() {
	var (
		service  *messaging.Service
		repo     *mockMessageRepository
		dir      *mockOrgDirectory
		resolver *mockResolver
		notifier *mockNotifier
		ctx      context.Context
	)

	storeMessage := func(id string, senderID *int64, recipientID int64, status string) *messaging.Message {
		msg := &messaging.Message{
			ID:          id,
			SenderID:    senderID,
			RecipientID: recipientID,
			Content:     "original content",
			MessageType: messaging.TypeDirect,
			Priority:    messaging.PriorityHigh,
			Status:      status,
			CreatedAt:   time.Now().UTC(),
		}
		repo.messages[id] = msg
		return msg
	}

	BeforeEach(func() {
		repo = newMockMessageRepository()
		dir = newMockOrgDirectory()
		resolver = &mockResolver{verdict: permission.Verdict{Allowed: true, MatchedRule: permission.RuleSameDepartment}}
		notifier = &mockNotifier{}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = messaging.NewService(repo, dir, resolver, notifier, logger)
		ctx = context.Background()
	})

	Describe("ReadMessage", func() {
		Context("when the message is unread", func() {
			It("should mark it read and return the thread", func() {
				senderID := int64(2)
				storeMessage("msg-1", &senderID, 1, messaging.StatusDelivered)

				thread, err := service.ReadMessage(ctx, 1, "msg-1")

				Expect(err).ToNot(HaveOccurred())
				Expect(thread.Message.Status).To(Equal(messaging.StatusRead))
				Expect(thread.Message.ReadAt).ToNot(BeNil())
				Expect(thread.Replies).To(BeEmpty())
			})
		})

		Context("when the message was already read", func() {
			It("should keep the original read timestamp", func() {
				senderID := int64(2)
				storeMessage("msg-1", &senderID, 1, messaging.StatusDelivered)

				first, err := service.ReadMessage(ctx, 1, "msg-1")
				Expect(err).ToNot(HaveOccurred())
				firstReadAt := *first.Message.ReadAt

				second, err := service.ReadMessage(ctx, 1, "msg-1")

				Expect(err).ToNot(HaveOccurred())
				Expect(second.Message.Status).To(Equal(messaging.StatusRead))
				Expect(*second.Message.ReadAt).To(Equal(firstReadAt))
				Expect(repo.markReadCalls).To(Equal(1))
			})
		})

		Context("when the message belongs to someone else", func() {
			It("should report not found", func() {
				senderID := int64(2)
				storeMessage("msg-1", &senderID, 1, messaging.StatusDelivered)

				_, err := service.ReadMessage(ctx, 99, "msg-1")

				Expect(err).To(MatchError(internal.ErrMessageNotFound))
			})
		})

		Context("when the message has replies", func() {
			It("should return them with the thread", func() {
				senderID := int64(2)
				parent := storeMessage("msg-1", &senderID, 1, messaging.StatusDelivered)
				replierID := int64(1)
				reply := storeMessage("msg-2", &replierID, 2, messaging.StatusDelivered)
				reply.ParentID = &parent.ID

				thread, err := service.ReadMessage(ctx, 1, "msg-1")

				Expect(err).ToNot(HaveOccurred())
				Expect(thread.Replies).To(HaveLen(1))
				Expect(thread.Replies[0].ID).To(Equal("msg-2"))
			})
		})
	})

	Describe("Reply", func() {
		Context("when replying to a received message", func() {
			It("should invert the direction and link the parent", func() {
				senderID := int64(2)
				subject := "deploy window"
				original := storeMessage("msg-1", &senderID, 1, messaging.StatusDelivered)
				original.Subject = &subject
				dir.employees[1] = &directory.Employee{ID: 1, AccountID: 1}
				dir.employees[2] = &directory.Employee{ID: 2, AccountID: 2}

				reply, err := service.Reply(ctx, 1, "msg-1", messaging.ReplyDTO{Content: "works for me"})

				Expect(err).ToNot(HaveOccurred())
				Expect(*reply.SenderID).To(Equal(int64(1)))
				Expect(reply.RecipientID).To(Equal(int64(2)))
				Expect(*reply.ParentID).To(Equal("msg-1"))
				Expect(*reply.Subject).To(Equal("Re: deploy window"))
				Expect(reply.Priority).To(Equal(original.Priority))
				Expect(notifier.delivered).To(HaveLen(1))
			})

			It("should leave the subject unset when the original had none", func() {
				senderID := int64(2)
				storeMessage("msg-1", &senderID, 1, messaging.StatusDelivered)
				dir.employees[1] = &directory.Employee{ID: 1, AccountID: 1}
				dir.employees[2] = &directory.Employee{ID: 2, AccountID: 2}

				reply, err := service.Reply(ctx, 1, "msg-1", messaging.ReplyDTO{Content: "works for me"})

				Expect(err).ToNot(HaveOccurred())
				Expect(reply.Subject).To(BeNil())
			})

			It("should re-check permission in the reverse direction", func() {
				senderID := int64(2)
				storeMessage("msg-1", &senderID, 1, messaging.StatusDelivered)
				dir.employees[1] = &directory.Employee{ID: 1, AccountID: 1}
				dir.employees[2] = &directory.Employee{ID: 2, AccountID: 2}
				resolver.verdict = permission.Verdict{
					Allowed:    false,
					Reason:     "not reachable",
					Suggestion: "contact HR",
				}

				_, err := service.Reply(ctx, 1, "msg-1", messaging.ReplyDTO{Content: "works for me"})

				appErr, ok := internal.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Code).To(Equal(internal.ErrCodeMessageNotAllowed))
				Expect(resolver.calls).To(Equal([][2]int64{{1, 2}}))
			})
		})

		Context("when the original is a system message", func() {
			It("should reject the reply", func() {
				storeMessage("msg-1", nil, 1, messaging.StatusDelivered)

				_, err := service.Reply(ctx, 1, "msg-1", messaging.ReplyDTO{Content: "who sent this?"})

				Expect(err).To(MatchError(internal.ErrCannotReply))
			})
		})

		Context("when replying to someone else's message", func() {
			It("should report not found", func() {
				senderID := int64(2)
				storeMessage("msg-1", &senderID, 1, messaging.StatusDelivered)

				_, err := service.Reply(ctx, 99, "msg-1", messaging.ReplyDTO{Content: "hi"})

				Expect(err).To(MatchError(internal.ErrMessageNotFound))
			})
		})
	})

	Describe("CountUnread", func() {
		It("should count only delivered messages for the recipient", func() {
			senderID := int64(2)
			storeMessage("msg-1", &senderID, 1, messaging.StatusDelivered)
			storeMessage("msg-2", &senderID, 1, messaging.StatusRead)
			storeMessage("msg-3", &senderID, 5, messaging.StatusDelivered)

			count, err := service.CountUnread(ctx, 1)

			Expect(err).ToNot(HaveOccurred())
			Expect(count).To(Equal(int64(1)))
		})
	})
})
