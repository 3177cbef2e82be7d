package shim

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/flanksource/jsvm/pkg/layout"
	"github.com/flanksource/jsvm/pkg/platform"
)

func TestShimProperties(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Shim Properties Suite")
}

var _ = Describe("shim regeneration idempotence", func() {
	It("produces the same directory contents whether RegenerateDir runs once or twice", func() {
		l := layout.New(GinkgoT().TempDir())
		l.Platform = platform.Platform{OS: "linux", Arch: "amd64"}
		Expect(EnsureDefaults(l)).To(Succeed())

		Expect(RegenerateDir(l)).To(Succeed())
		first, err := Enumerate(l)
		Expect(err).NotTo(HaveOccurred())

		Expect(RegenerateDir(l)).To(Succeed())
		second, err := Enumerate(l)
		Expect(err).NotTo(HaveOccurred())

		Expect(second).To(Equal(first))
	})
})
