// SPDX-License-Identifier: MIT
package discovery_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/skaphos/dyd/internal/discovery"
	"github.com/skaphos/dyd/internal/vcs"
)

func gitInit(dir, origin string) {
	GinkgoHelper()
	Expect(exec.Command("git", "init", "--quiet", dir).Run()).To(Succeed())
	if origin != "" {
		Expect(exec.Command("git", "-C", dir, "remote", "add", "origin", origin).Run()).To(Succeed())
	}
}

var _ = Describe("Discovery", func() {
	It("matches exclude patterns", func() {
		Expect(discovery.MatchesExclude("C:/code/repo/.git", []string{"**/.git/**"})).To(BeTrue())
		Expect(discovery.MatchesExclude("C:/code/repo", []string{"**/node_modules/**"})).To(BeFalse())
	})

	It("scans for git repositories and reads their origin", func() {
		root := GinkgoT().TempDir()
		repo := filepath.Join(root, "repo1")
		gitInit(repo, "git@github.com:Org/Repo1.git")

		results, err := discovery.Scan(context.Background(), discovery.Options{
			Roots:    []string{root},
			Adapters: vcs.NewSetOf(vcs.NewGitAdapter(nil)),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(1))
		Expect(results[0].Path).To(Equal(repo))
		Expect(results[0].RemoteURL).To(Equal("git@github.com:Org/Repo1.git"))
		Expect(results[0].RepoID).To(Equal("github.com/Org/Repo1"))
		Expect(results[0].VCS).To(Equal("git"))
	})

	It("does not descend into discovered repositories", func() {
		root := GinkgoT().TempDir()
		outer := filepath.Join(root, "outer")
		gitInit(outer, "")
		gitInit(filepath.Join(outer, "nested"), "")

		results, err := discovery.Scan(context.Background(), discovery.Options{Roots: []string{root}})
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(1))
		Expect(results[0].Path).To(Equal(outer))
	})

	It("respects exclude patterns during scan", func() {
		root := GinkgoT().TempDir()
		gitInit(filepath.Join(root, "vendor", "repo2"), "")

		results, err := discovery.Scan(context.Background(), discovery.Options{
			Roots:   []string{root},
			Exclude: []string{"**/vendor/**"},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(BeEmpty())
	})

	It("detects linked .git directories", func() {
		root := GinkgoT().TempDir()
		repo := filepath.Join(root, "repo3")
		gitInit(repo, "")

		gitDir := filepath.Join(root, "repo3.gitdir")
		Expect(os.Rename(filepath.Join(repo, ".git"), gitDir)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(repo, ".git"), []byte("gitdir: "+gitDir), 0o644)).To(Succeed())

		results, err := discovery.Scan(context.Background(), discovery.Options{Roots: []string{root}})
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(1))
		Expect(results[0].Path).To(Equal(repo))
	})

	It("finds repositories with the in-process backend", func() {
		root := GinkgoT().TempDir()
		repo := filepath.Join(root, "repo4")
		gitInit(repo, "https://example.com/org/repo4.git")

		results, err := discovery.Scan(context.Background(), discovery.Options{
			Roots:    []string{root},
			Adapters: vcs.NewSetOf(vcs.NewGoGitAdapter()),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(1))
		Expect(results[0].VCS).To(Equal("go-git"))
		Expect(results[0].PrimaryRemote).To(Equal("origin"))
	})

	It("stops when the context is cancelled", func() {
		root := GinkgoT().TempDir()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := discovery.Scan(ctx, discovery.Options{Roots: []string{root}})
		Expect(err).To(MatchError(context.Canceled))
	})
})
