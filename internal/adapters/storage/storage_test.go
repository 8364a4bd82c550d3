package storage_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/redis/go-redis/v9"

	"github.com/larriantoniy/tg_relay_bot/internal/adapters/storage"
	"github.com/larriantoniy/tg_relay_bot/internal/domain"
	"github.com/larriantoniy/tg_relay_bot/internal/ports"
)

// userStoreContract проверяет одинаковое поведение всех реализаций UserStore
func userStoreContract(open func() ports.UserStore) {
	var (
		ctx   context.Context
		store ports.UserStore
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = open()
	})

	It("should register a user once", func() {
		u := domain.User{ID: 10, DisplayName: "Alice", Username: "alice"}

		Expect(store.UpsertUser(ctx, u)).To(Succeed())
		Expect(store.UpsertUser(ctx, u)).To(Succeed())
		Expect(store.UpsertUser(ctx, domain.User{ID: 11})).To(Succeed())

		Expect(store.CountUsers(ctx)).To(Equal(2))
	})

	It("should not report unknown users as banned", func() {
		Expect(store.IsBanned(ctx, 99)).To(BeFalse())
	})

	It("should ban and unban", func() {
		Expect(store.SetBanned(ctx, 10, true)).To(Succeed())
		Expect(store.IsBanned(ctx, 10)).To(BeTrue())

		Expect(store.SetBanned(ctx, 10, false)).To(Succeed())
		Expect(store.IsBanned(ctx, 10)).To(BeFalse())
	})

	It("should treat repeated bans as no-op", func() {
		Expect(store.SetBanned(ctx, 10, true)).To(Succeed())
		Expect(store.SetBanned(ctx, 10, true)).To(Succeed())
		Expect(store.SetBanned(ctx, 12, false)).To(Succeed())

		Expect(store.ListBanned(ctx)).To(Equal([]int64{10}))
	})

	It("should list banned ids in ascending order", func() {
		for _, id := range []int64{300, 7, 42} {
			Expect(store.SetBanned(ctx, id, true)).To(Succeed())
		}

		Expect(store.ListBanned(ctx)).To(Equal([]int64{7, 42, 300}))
	})

	It("should return an empty ban list", func() {
		Expect(store.ListBanned(ctx)).To(BeEmpty())
	})

	It("should keep bans apart from registration", func() {
		Expect(store.SetBanned(ctx, 10, true)).To(Succeed())

		Expect(store.CountUsers(ctx)).To(BeZero())
	})
}

var _ = Describe("SQLiteUserStore", func() {
	userStoreContract(func() ports.UserStore {
		path := filepath.Join(GinkgoT().TempDir(), "data", "users.db")
		store, err := storage.NewSQLiteUserStore(path)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(store.Close)
		return store
	})

	It("should keep data between reopen", func() {
		ctx := context.Background()
		path := filepath.Join(GinkgoT().TempDir(), "users.db")

		store, err := storage.NewSQLiteUserStore(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(store.UpsertUser(ctx, domain.User{ID: 1})).To(Succeed())
		Expect(store.SetBanned(ctx, 2, true)).To(Succeed())
		Expect(store.Close()).To(Succeed())

		store, err = storage.NewSQLiteUserStore(path)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(store.Close)

		Expect(store.CountUsers(ctx)).To(Equal(1))
		Expect(store.IsBanned(ctx, 2)).To(BeTrue())
	})
})

func purge(url, prefix string) {
	ctx := context.Background()
	opts, err := redis.ParseURL(url)
	Expect(err).NotTo(HaveOccurred())
	client := redis.NewClient(opts)
	defer client.Close()

	keys, err := client.Keys(ctx, prefix+":*").Result()
	Expect(err).NotTo(HaveOccurred())
	if len(keys) > 0 {
		Expect(client.Del(ctx, keys...).Err()).To(Succeed())
	}
}

var _ = Describe("RedisUserStore", func() {
	url := os.Getenv("TEST_REDIS_URL")

	BeforeEach(func() {
		if url == "" {
			Skip("TEST_REDIS_URL is not set")
		}
	})

	userStoreContract(func() ports.UserStore {
		log := slog.New(slog.NewTextHandler(io.Discard, nil))
		// свой префикс на каждый тест, чтобы не пересекаться с соседями
		prefix := "test:" + uuid.NewString()
		store, err := storage.NewRedisUserStore(context.Background(), url, prefix, log)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() {
			purge(url, prefix)
			Expect(store.Close()).To(Succeed())
		})
		return store
	})

	It("should fail on a malformed url", func() {
		log := slog.New(slog.NewTextHandler(io.Discard, nil))
		_, err := storage.NewRedisUserStore(context.Background(), "not-a-url", "test", log)

		Expect(err).To(HaveOccurred())
	})
})
