package probe

import (
	"os"
	"runtime"
	"testing"
)

func TestTableAliveSelf(t *testing.T) {
	pid := os.Getpid()
	alive, err := Table{}.Alive(pid, 0)
	if err != nil {
		t.Fatalf("alive: %v", err)
	}
	if !alive {
		t.Fatalf("own pid %d must be alive", pid)
	}
}

func TestTableAliveInvalidPID(t *testing.T) {
	for _, pid := range []int{0, -1} {
		alive, err := Table{}.Alive(pid, 0)
		if err != nil {
			t.Fatalf("alive(%d): %v", pid, err)
		}
		if alive {
			t.Fatalf("pid %d must not be alive", pid)
		}
	}
}

func TestTableAliveNonexistentPID(t *testing.T) {
	// Above the default Linux pid_max, so no process can hold it.
	alive, err := Table{}.Alive(4194305, 0)
	if err != nil {
		t.Fatalf("alive: %v", err)
	}
	if alive {
		t.Fatalf("pid above pid_max must not be alive")
	}
}

func TestStartUnixSelf(t *testing.T) {
	if runtime.GOOS != "linux" && runtime.GOOS != "darwin" {
		t.Skip("start time probe covered on unix only")
	}
	got := StartUnix(os.Getpid())
	if got <= 0 {
		t.Fatalf("start time for own pid = %d, want > 0", got)
	}
}

func TestTableDetectsReusedPID(t *testing.T) {
	pid := os.Getpid()
	real := StartUnix(pid)
	if real <= 0 {
		t.Skip("start time unavailable on this platform")
	}
	// A recorded start time that differs from the live one means the PID
	// was recycled by another process.
	alive, err := Table{}.Alive(pid, real+12345)
	if err != nil {
		t.Fatalf("alive: %v", err)
	}
	if alive {
		t.Fatalf("mismatched start time must report not alive")
	}
}
