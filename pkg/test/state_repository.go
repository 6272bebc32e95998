package test

import (
	"context"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/suite"

	"taskboard/internal/core/port"
)

// StateRepositorySuite checks the behaviour every state backend shares. Embed
// it and set NewRepository before suite.Run.
type StateRepositorySuite struct {
	suite.Suite
	NewRepository func() port.StateRepository
	Repo          port.StateRepository
}

func (s *StateRepositorySuite) SetupTest() {
	RegisterTestingT(s.T())
	s.Repo = s.NewRepository()
}

func (s *StateRepositorySuite) TearDownTest() {
	if s.Repo != nil {
		s.Repo.Close()
	}
}

func (s *StateRepositorySuite) TestGet_Missing() {
	value, err := s.Repo.Get(context.Background(), "missing")

	Expect(err).To(MatchError(port.ErrStateNotFound))
	Expect(value).To(BeNil())
}

func (s *StateRepositorySuite) TestPutGet() {
	ctx := context.Background()

	Expect(s.Repo.Put(ctx, "todoApp", []byte(`{"projects":[]}`))).To(Succeed())

	value, err := s.Repo.Get(ctx, "todoApp")
	Expect(err).NotTo(HaveOccurred())
	Expect(string(value)).To(Equal(`{"projects":[]}`))
}

func (s *StateRepositorySuite) TestPut_Overwrites() {
	ctx := context.Background()

	Expect(s.Repo.Put(ctx, "todoApp", []byte("first"))).To(Succeed())
	Expect(s.Repo.Put(ctx, "todoApp", []byte("second"))).To(Succeed())

	value, err := s.Repo.Get(ctx, "todoApp")
	Expect(err).NotTo(HaveOccurred())
	Expect(string(value)).To(Equal("second"))
}

func (s *StateRepositorySuite) TestKeysAreIndependent() {
	ctx := context.Background()

	Expect(s.Repo.Put(ctx, "a", []byte("A"))).To(Succeed())
	Expect(s.Repo.Put(ctx, "b", []byte("B"))).To(Succeed())
	Expect(s.Repo.Delete(ctx, "a")).To(Succeed())

	value, err := s.Repo.Get(ctx, "b")
	Expect(err).NotTo(HaveOccurred())
	Expect(string(value)).To(Equal("B"))
}

func (s *StateRepositorySuite) TestHasAndDelete() {
	ctx := context.Background()

	has, err := s.Repo.Has(ctx, "todoApp")
	Expect(err).NotTo(HaveOccurred())
	Expect(has).To(BeFalse())

	Expect(s.Repo.Put(ctx, "todoApp", []byte("x"))).To(Succeed())

	has, err = s.Repo.Has(ctx, "todoApp")
	Expect(err).NotTo(HaveOccurred())
	Expect(has).To(BeTrue())

	Expect(s.Repo.Delete(ctx, "todoApp")).To(Succeed())
	Expect(s.Repo.Delete(ctx, "todoApp")).To(Succeed())

	_, err = s.Repo.Get(ctx, "todoApp")
	Expect(err).To(MatchError(port.ErrStateNotFound))

	has, err = s.Repo.Has(ctx, "todoApp")
	Expect(err).NotTo(HaveOccurred())
	Expect(has).To(BeFalse())
}
