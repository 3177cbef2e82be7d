package lock

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestLockProperties(t *testing.T) {
	if os.Getenv("LOCK_HELPER_PROCESS") == "1" {
		runHelperProcess()
		return
	}
	RegisterFailHandler(Fail)
	RunSpecs(t, "Lock Properties Suite")
}

var _ = Describe("lock mutual exclusion", func() {
	It("serialises critical sections across two processes racing for the same lock file", func() {
		if testing.Short() {
			Skip("skipping subprocess test in -short mode")
		}

		dir := GinkgoT().TempDir()
		lockPath := filepath.Join(dir, "mutual.lock")
		markerPath := filepath.Join(dir, "marker.txt")

		var procs []*exec.Cmd
		for i := 0; i < 2; i++ {
			cmd := exec.Command(os.Args[0], "-test.run=TestLockProperties")
			cmd.Env = append(os.Environ(),
				"LOCK_HELPER_PROCESS=1",
				"LOCK_HELPER_LOCKFILE="+lockPath,
				"LOCK_HELPER_MARKER="+markerPath,
			)
			Expect(cmd.Start()).To(Succeed())
			procs = append(procs, cmd)
		}
		for _, p := range procs {
			Expect(p.Wait()).To(Succeed())
		}

		data, err := os.ReadFile(markerPath)
		Expect(err).NotTo(HaveOccurred())

		lines := splitLines(string(data))
		depth := 0
		for _, line := range lines {
			switch line {
			case "BEGIN":
				depth++
				Expect(depth).To(Equal(1), "overlapping critical sections")
			case "END":
				depth--
			}
		}
		Expect(depth).To(Equal(0))
	})
})
