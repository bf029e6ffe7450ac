// SPDX-License-Identifier: MIT
package remotemismatch_test

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/skaphos/dyd/internal/gitx"
	"github.com/skaphos/dyd/internal/model"
	"github.com/skaphos/dyd/internal/remotemismatch"
	"github.com/skaphos/dyd/internal/vcs"
)

type adapterStub struct {
	remotes map[string][]gitx.Remote
}

func (a *adapterStub) Name() string                                 { return "git" }
func (a *adapterStub) IsRepo(context.Context, string) (bool, error) { return true, nil }
func (a *adapterStub) Remotes(_ context.Context, dir string) ([]gitx.Remote, error) {
	return a.remotes[filepath.Base(dir)], nil
}
func (a *adapterStub) PrimaryRemote(names []string) string                 { return gitx.PrimaryRemote(names) }
func (a *adapterStub) Clone(context.Context, string, string, string) error { return nil }
func (a *adapterStub) Update(context.Context, string, string) error        { return nil }
func (a *adapterStub) History(context.Context, string, string, int) ([]string, error) {
	return nil, nil
}

var _ = Describe("ParseReconcileMode", func() {
	It("defaults to none", func() {
		mode, err := remotemismatch.ParseReconcileMode("")
		Expect(err).NotTo(HaveOccurred())
		Expect(mode).To(Equal(remotemismatch.ReconcileNone))
	})

	It("accepts reclone in any case", func() {
		mode, err := remotemismatch.ParseReconcileMode(" Reclone ")
		Expect(err).NotTo(HaveOccurred())
		Expect(mode).To(Equal(remotemismatch.ReconcileReclone))
	})

	It("rejects unknown modes", func() {
		_, err := remotemismatch.ParseReconcileMode("registry")
		Expect(err).To(MatchError(ContainSubstring("unsupported --reconcile")))
	})
})

var _ = Describe("BuildPlans", func() {
	var (
		root     string
		adapters *vcs.Set
		repos    []model.Repository
	)

	mkMirror := func(name string) {
		Expect(os.MkdirAll(filepath.Join(root, name), 0o755)).To(Succeed())
	}

	BeforeEach(func() {
		root = GinkgoT().TempDir()
		adapters = vcs.NewSetOf(&adapterStub{remotes: map[string][]gitx.Remote{
			"app.git":  {{Name: "origin", URL: "https://github.com/org/app.git"}},
			"lib.git":  {{Name: "origin", URL: "git@github.com:someone-else/lib.git"}},
			"bare.git": nil,
		}})
		repos = []model.Repository{
			{ID: "github.com/org/app", Name: "app", Origin: "git@github.com:org/app.git"},
			{ID: "github.com/org/lib", Name: "lib", Origin: "git@github.com:org/lib.git"},
			{ID: "github.com/org/bare", Name: "bare", Origin: "git@github.com:org/bare.git"},
			{ID: "github.com/org/missing", Name: "missing", Origin: "git@github.com:org/missing.git"},
			{ID: "gitlab.com/fork/app", Name: "fork", Origin: "git@gitlab.com:fork/app.git"},
		}
		mkMirror("app.git")
		mkMirror("lib.git")
		mkMirror("bare.git")
	})

	It("reports mismatched, remoteless and shared mirrors", func() {
		plans, err := remotemismatch.BuildPlans(context.Background(), repos, root, adapters, remotemismatch.ReconcileNone)
		Expect(err).NotTo(HaveOccurred())
		Expect(plans).To(HaveLen(3))

		Expect(plans[0].Name).To(Equal("lib"))
		Expect(plans[0].Kind).To(Equal(remotemismatch.KindMismatch))
		Expect(plans[0].MirrorURL).To(Equal("git@github.com:someone-else/lib.git"))
		Expect(plans[0].Action).To(Equal("none"))

		Expect(plans[1].Name).To(Equal("bare"))
		Expect(plans[1].Kind).To(Equal(remotemismatch.KindNoRemote))

		Expect(plans[2].Name).To(Equal("fork"))
		Expect(plans[2].Kind).To(Equal(remotemismatch.KindShared))
		Expect(plans[2].Action).To(ContainSubstring("app owns this mirror"))
	})

	It("lets branches of one origin share a mirror", func() {
		branches := []model.Repository{
			repos[0],
			{ID: "github.com/org/app#release", Name: "app-release", Origin: "https://github.com/org/app.git", Branch: "release"},
		}
		plans, err := remotemismatch.BuildPlans(context.Background(), branches, root, adapters, remotemismatch.ReconcileNone)
		Expect(err).NotTo(HaveOccurred())
		Expect(plans).To(BeEmpty())
	})

	It("removes mismatched mirrors when recloning", func() {
		plans, err := remotemismatch.BuildPlans(context.Background(), repos, root, adapters, remotemismatch.ReconcileReclone)
		Expect(err).NotTo(HaveOccurred())
		Expect(remotemismatch.ApplyPlans(plans, remotemismatch.ReconcileReclone)).To(Succeed())

		Expect(filepath.Join(root, "app.git")).To(BeADirectory())
		Expect(filepath.Join(root, "lib.git")).NotTo(BeAnExistingFile())
		Expect(filepath.Join(root, "bare.git")).NotTo(BeAnExistingFile())
	})

	It("leaves mirrors alone in none mode", func() {
		plans, err := remotemismatch.BuildPlans(context.Background(), repos, root, adapters, remotemismatch.ReconcileNone)
		Expect(err).NotTo(HaveOccurred())
		Expect(remotemismatch.ApplyPlans(plans, remotemismatch.ReconcileNone)).To(Succeed())
		Expect(filepath.Join(root, "lib.git")).To(BeADirectory())
	})

	It("stops on a cancelled context", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := remotemismatch.BuildPlans(ctx, repos, root, adapters, remotemismatch.ReconcileNone)
		Expect(err).To(MatchError(context.Canceled))
	})
})
