package testing

import (
	"os"
	"sync"
	stdtesting "testing"

	"github.com/IshuSinghSE/wallpaperz-sub000/internal/app"
)

var once sync.Once

func ensureTestMode() {
	once.Do(func() {
		_ = os.Setenv("WALLPAPERZ_TEST_MODE", "1")
		if os.Getenv("OPTIMIZER_URL") == "" {
			_ = os.Setenv("OPTIMIZER_URL", "http://127.0.0.1:0")
		}
		app.RefreshTestMode()
	})
}

func init() {
	ensureTestMode()
}

func TestMain(m *stdtesting.M) {
	ensureTestMode()
	os.Exit(m.Run())
}
