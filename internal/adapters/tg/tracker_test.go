package tg

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("sendTracker", func() {
	var (
		tracker *sendTracker
		key     sendKey
	)

	BeforeEach(func() {
		tracker = newSendTracker(time.Minute)
		key = sendKey{chatID: 10, messageID: 1}
	})

	It("should deliver a result to the waiting sender", func() {
		go func() {
			defer GinkgoRecover()
			Eventually(func() int {
				waiting, _ := tracker.pending()
				return waiting
			}).Should(Equal(1))
			tracker.resolve(key, sendResult{messageID: 555})
		}()

		id, err := tracker.wait(context.Background(), key, time.Second)

		Expect(err).NotTo(HaveOccurred())
		Expect(id).To(Equal(int64(555)))
		waiting, early := tracker.pending()
		Expect(waiting).To(BeZero())
		Expect(early).To(BeZero())
	})

	It("should keep a result that came before the wait", func() {
		tracker.resolve(key, sendResult{messageID: 556})

		id, err := tracker.wait(context.Background(), key, time.Second)

		Expect(err).NotTo(HaveOccurred())
		Expect(id).To(Equal(int64(556)))
		_, early := tracker.pending()
		Expect(early).To(BeZero())
	})

	It("should pass send failures through", func() {
		failure := errors.New("rejected")
		tracker.resolve(key, sendResult{err: failure})

		_, err := tracker.wait(context.Background(), key, time.Second)

		Expect(err).To(MatchError(failure))
	})

	It("should not mix results of different chats", func() {
		tracker.resolve(sendKey{chatID: 11, messageID: 1}, sendResult{messageID: 1})

		_, err := tracker.wait(context.Background(), key, 10*time.Millisecond)

		Expect(err).To(MatchError(ErrSendTimeout))
	})

	It("should give up on timeout and forget the waiter", func() {
		_, err := tracker.wait(context.Background(), key, 10*time.Millisecond)

		Expect(err).To(MatchError(ErrSendTimeout))
		waiting, _ := tracker.pending()
		Expect(waiting).To(BeZero())
	})

	It("should stop waiting on cancel", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := tracker.wait(ctx, key, time.Second)

		Expect(err).To(MatchError(context.Canceled))
	})

	It("should prune stale early results", func() {
		now := time.Now()
		tracker.now = func() time.Time { return now }
		tracker.resolve(sendKey{chatID: 1, messageID: 1}, sendResult{messageID: 1})

		now = now.Add(2 * time.Minute)
		tracker.resolve(sendKey{chatID: 1, messageID: 2}, sendResult{messageID: 2})

		_, early := tracker.pending()
		Expect(early).To(Equal(1))
	})
})
