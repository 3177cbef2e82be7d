package executor

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/flanksource/jsvm/pkg/layout"
	"github.com/flanksource/jsvm/pkg/session"
)

func TestExecutorProperties(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Executor Properties Suite")
}

var _ = Describe("recursion termination", func() {
	DescribeTable("with the recursion sentinel set, every tool kind dispatches to Bypass with no further lookups",
		func(name string) {
			l := layout.New(GinkgoT().TempDir())
			sess := session.New(l, GinkgoT().TempDir())

			GinkgoT().Setenv(RecursionEnvVar, "1")

			exec, err := Resolve(name, nil, sess)
			Expect(err).NotTo(HaveOccurred())

			cmd, ok := exec.(*ToolCommand)
			Expect(ok).To(BeTrue())
			Expect(cmd.Kind).To(Equal(KindBypass))
		},
		Entry("reserved node", "node"),
		Entry("reserved npm", "npm"),
		Entry("reserved yarn", "yarn"),
		Entry("third-party package name", "typescript"),
		Entry("name never seen before", "never-installed-either"),
	)
})
