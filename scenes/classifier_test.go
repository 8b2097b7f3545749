package scenes_test

import (
	"context"
	"errors"
	"strconv"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/alphagov/scene-router/scenes"
)

type mapDictionary struct {
	values   map[string]string
	err      error
	lookups  int
	deadline bool
}

func (d *mapDictionary) Get(ctx context.Context, key string) (string, bool, error) {
	d.lookups++
	_, d.deadline = ctx.Deadline()
	if d.err != nil {
		return "", false, d.err
	}
	v, ok := d.values[key]
	return v, ok, nil
}

func sceneList(raw string) *mapDictionary {
	return &mapDictionary{values: map[string]string{scenes.ListKey: raw}}
}

var _ = Describe("ParseList", func() {
	It("parses every comma-separated token in order", func() {
		Expect(scenes.ParseList("3,10,42")).To(Equal([]uint32{3, 10, 42}))
	})

	It("parses leading zeros as the integer value", func() {
		Expect(scenes.ParseList("007")).To(Equal([]uint32{7}))
	})

	DescribeTable("rejects the whole list when a token is malformed",
		func(raw, token string, position int) {
			_, err := scenes.ParseList(raw)
			var perr *scenes.ParseError
			Expect(errors.As(err, &perr)).To(BeTrue())
			Expect(perr.Token).To(Equal(token))
			Expect(perr.Position).To(Equal(position))
			Expect(errors.Is(err, strconv.ErrSyntax)).To(BeTrue())
		},
		Entry("non-numeric token", "3,x,42", "x", 1),
		Entry("padded token", "3, 10", " 10", 1),
		Entry("negative number", "-1", "-1", 0),
		Entry("empty value", "", "", 0),
		Entry("trailing comma", "1,2,", "", 2),
		Entry("historic placeholder text", "Auth Cookie not found", "Auth Cookie not found", 0),
	)

	It("rejects numbers outside the segment number range", func() {
		_, err := scenes.ParseList("4294967296")
		Expect(errors.Is(err, strconv.ErrRange)).To(BeTrue())
	})
})

var _ = Describe("Classifier", func() {
	ctx := context.Background()

	Context("with the scene list 3,10,42", func() {
		var (
			dict       *mapDictionary
			classifier *scenes.Classifier
		)

		BeforeEach(func() {
			dict = sceneList("3,10,42")
			classifier = scenes.NewClassifier(dict, time.Second)
		})

		It("reports a listed segment as a cut scene", func() {
			Expect(classifier.IsCutScene(ctx, 10)).To(BeTrue())
		})

		It("reports an unlisted segment as a regular segment", func() {
			Expect(classifier.IsCutScene(ctx, 11)).To(BeFalse())
		})

		It("gives the same answer on repeated calls", func() {
			for i := 0; i < 5; i++ {
				Expect(classifier.IsCutScene(ctx, 42)).To(BeTrue())
				Expect(classifier.IsCutScene(ctx, 0)).To(BeFalse())
			}
		})

		It("reads the dictionary on every call", func() {
			_, _ = classifier.IsCutScene(ctx, 3)
			_, _ = classifier.IsCutScene(ctx, 3)
			Expect(dict.lookups).To(Equal(2))
		})

		It("sees dictionary updates on the next call", func() {
			Expect(classifier.IsCutScene(ctx, 11)).To(BeFalse())
			dict.values[scenes.ListKey] = "11"
			Expect(classifier.IsCutScene(ctx, 11)).To(BeTrue())
		})

		It("bounds the dictionary read with a deadline", func() {
			_, _ = classifier.IsCutScene(ctx, 3)
			Expect(dict.deadline).To(BeTrue())
		})
	})

	It("does not set a deadline when no timeout is configured", func() {
		dict := sceneList("1")
		_, _ = scenes.NewClassifier(dict, 0).IsCutScene(ctx, 1)
		Expect(dict.deadline).To(BeFalse())
	})

	It("fails with a ParseError on a malformed list", func() {
		_, err := scenes.NewClassifier(sceneList("3,x,42"), 0).IsCutScene(ctx, 3)
		var perr *scenes.ParseError
		Expect(errors.As(err, &perr)).To(BeTrue())
	})

	It("fails with ErrSceneListMissing when the key is absent", func() {
		dict := &mapDictionary{values: map[string]string{}}
		_, err := scenes.NewClassifier(dict, 0).IsCutScene(ctx, 3)
		Expect(err).To(MatchError(scenes.ErrSceneListMissing))
	})

	It("wraps dictionary failures in ErrDictionaryUnavailable", func() {
		cause := errors.New("connection refused")
		dict := &mapDictionary{err: cause}
		_, err := scenes.NewClassifier(dict, 0).IsCutScene(ctx, 3)
		Expect(err).To(MatchError(scenes.ErrDictionaryUnavailable))
		Expect(errors.Is(err, cause)).To(BeTrue())
	})

	It("returns the parsed list", func() {
		Expect(scenes.NewClassifier(sceneList("5,9"), 0).List(ctx)).To(Equal([]uint32{5, 9}))
	})
})
