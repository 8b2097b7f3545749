package dictionary

import (
	"context"

	"github.com/alicebob/miniredis/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/redis/go-redis/v9"
)

var _ = Describe("Redis", func() {
	var (
		server *miniredis.Miniredis
		client *redis.Client
		dict   *Redis
		ctx    = context.Background()
	)

	BeforeEach(func() {
		var err error
		server, err = miniredis.Run()
		Expect(err).NotTo(HaveOccurred())

		client = redis.NewClient(&redis.Options{Addr: server.Addr()})
		dict = NewRedis(client, "cut_scenes")
	})

	AfterEach(func() {
		_ = client.Close()
		server.Close()
	})

	It("returns the hash field for the key", func() {
		server.HSet("cut_scenes", "scenes", "5,9")

		value, found, err := dict.Get(ctx, "scenes")
		Expect(err).NotTo(HaveOccurred())
		Expect(found).To(BeTrue())
		Expect(value).To(Equal("5,9"))
	})

	It("reports a missing field as not found", func() {
		server.HSet("cut_scenes", "other", "1")

		_, found, err := dict.Get(ctx, "scenes")
		Expect(err).NotTo(HaveOccurred())
		Expect(found).To(BeFalse())
	})

	It("reports a missing hash as not found", func() {
		_, found, err := dict.Get(ctx, "scenes")
		Expect(err).NotTo(HaveOccurred())
		Expect(found).To(BeFalse())
	})

	It("sees updates on the next lookup", func() {
		server.HSet("cut_scenes", "scenes", "1")
		first, _, _ := dict.Get(ctx, "scenes")

		server.HSet("cut_scenes", "scenes", "2")
		second, _, _ := dict.Get(ctx, "scenes")

		Expect(first).To(Equal("1"))
		Expect(second).To(Equal("2"))
	})

	It("returns an error when redis is unreachable", func() {
		server.Close()

		_, found, err := dict.Get(ctx, "scenes")
		Expect(err).To(HaveOccurred())
		Expect(found).To(BeFalse())
	})
})
