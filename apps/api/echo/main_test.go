package echoapi

import (
	"os"
	"testing"

	"github.com/edulane/gurukul/core"
	"github.com/edulane/gurukul/core/account"
)

func TestMain(m *testing.M) {
	core.InitValidators()
	account.InitValidators()
	os.Exit(m.Run())
}
