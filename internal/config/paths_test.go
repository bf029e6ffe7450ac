// SPDX-License-Identifier: MIT
package config_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/skaphos/dyd/internal/config"
)

var _ = Describe("manifest resolution", func() {
	BeforeEach(func() {
		GinkgoT().Setenv(config.ManifestEnv, "")
	})

	It("prefers the explicit override", func() {
		GinkgoT().Setenv(config.ManifestEnv, "/env/dyd.yaml")
		path, err := config.ResolveManifestPath("/flag/dyd.toml", GinkgoT().TempDir())
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal("/flag/dyd.toml"))
	})

	It("uses the environment before searching", func() {
		GinkgoT().Setenv(config.ManifestEnv, "/env/dyd.yaml")
		path, err := config.ResolveManifestPath("", GinkgoT().TempDir())
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal("/env/dyd.yaml"))
	})

	It("finds the nearest manifest in a parent directory", func() {
		dir := GinkgoT().TempDir()
		parentPath := filepath.Join(dir, "dyd.toml")
		Expect(os.WriteFile(parentPath, []byte("since = \"1 day ago\"\n"), 0o644)).To(Succeed())
		nested := filepath.Join(dir, "a", "b")
		Expect(os.MkdirAll(nested, 0o755)).To(Succeed())

		path, err := config.ResolveManifestPath("", nested)
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal(parentPath))
	})

	It("prefers YAML over TOML in the same directory", func() {
		dir := GinkgoT().TempDir()
		Expect(os.WriteFile(filepath.Join(dir, "dyd.toml"), nil, 0o644)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(dir, "dyd.yaml"), nil, 0o644)).To(Succeed())
		path, err := config.FindNearestManifestPath(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal(filepath.Join(dir, "dyd.yaml")))
	})

	It("reports a missing manifest", func() {
		_, err := config.ResolveManifestPath("", GinkgoT().TempDir())
		Expect(err).To(MatchError(config.ErrManifestNotFound))
	})

	It("writes new manifests to dyd.yaml in cwd", func() {
		dir := GinkgoT().TempDir()
		path, err := config.InitManifestPath("", dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal(filepath.Join(dir, "dyd.yaml")))
	})
})

var _ = Describe("DataDir", func() {
	It("honors DYD_DATA_DIR", func() {
		GinkgoT().Setenv(config.DataDirEnv, "/srv/dyd/")
		Expect(config.DataDir()).To(Equal("/srv/dyd"))
	})

	It("falls back to XDG_DATA_HOME", func() {
		GinkgoT().Setenv(config.DataDirEnv, "")
		GinkgoT().Setenv("XDG_DATA_HOME", "/xdg")
		Expect(config.DataDir()).To(Equal(filepath.Join("/xdg", "dyd")))
	})

	It("falls back to the home directory", func() {
		home := GinkgoT().TempDir()
		GinkgoT().Setenv(config.DataDirEnv, "")
		GinkgoT().Setenv("XDG_DATA_HOME", "")
		GinkgoT().Setenv("HOME", home)
		Expect(config.DataDir()).To(Equal(filepath.Join(home, ".local", "share", "dyd")))
	})
})

var _ = Describe("ResolveRoot", func() {
	It("defaults to the data directory", func() {
		Expect(config.ResolveRoot("/cfg/dyd.yaml", "", "/data")).To(Equal("/data"))
	})

	It("resolves relative roots against the manifest", func() {
		Expect(config.ResolveRoot("/cfg/dyd.yaml", "mirrors", "/data")).To(Equal("/cfg/mirrors"))
	})

	It("keeps absolute roots", func() {
		Expect(config.ResolveRoot("/cfg/dyd.yaml", "/var/mirrors/", "/data")).To(Equal("/var/mirrors"))
	})

	It("expands the home directory", func() {
		home := GinkgoT().TempDir()
		GinkgoT().Setenv("HOME", home)
		Expect(config.ResolveRoot("/cfg/dyd.yaml", "~/mirrors", "/data")).To(Equal(filepath.Join(home, "mirrors")))
	})
})

var _ = Describe("LoadDotEnv", func() {
	It("loads variables without overriding the environment", func() {
		dir := GinkgoT().TempDir()
		Expect(os.WriteFile(filepath.Join(dir, ".env"), []byte("DYD_TEST_NEW=from-file\nDYD_TEST_SET=from-file\n"), 0o644)).To(Succeed())
		GinkgoT().Setenv("DYD_TEST_SET", "from-env")
		GinkgoT().Setenv("DYD_TEST_NEW", "")
		Expect(os.Unsetenv("DYD_TEST_NEW")).To(Succeed())

		Expect(config.LoadDotEnv(dir)).To(Succeed())
		Expect(os.Getenv("DYD_TEST_NEW")).To(Equal("from-file"))
		Expect(os.Getenv("DYD_TEST_SET")).To(Equal("from-env"))
	})

	It("ignores a missing file", func() {
		Expect(config.LoadDotEnv(GinkgoT().TempDir())).To(Succeed())
	})
})
