package astc_test

import (
	"errors"
	"testing"

	pkgerrors "github.com/pkg/errors"

	"github.com/arm-software/astc-codec/astc"
)

func TestErrorString(t *testing.T) {
	cases := []struct {
		code astc.ErrorCode
		want string
	}{
		{astc.Success, "SUCCESS"},
		{astc.ErrBadParam, "ERR_BAD_PARAM"},
		{astc.ErrBadBlockSize, "ERR_BAD_BLOCK_SIZE"},
		{astc.ErrBadProfile, "ERR_BAD_PROFILE"},
		{astc.ErrBadQuality, "ERR_BAD_QUALITY"},
		{astc.ErrBadData, "ERR_BAD_DATA"},
	}

	for _, c := range cases {
		if got := astc.ErrorString(c.code); got != c.want {
			t.Fatalf("ErrorString(%d): got %q want %q", uint32(c.code), got, c.want)
		}
	}

	if got := astc.ErrorString(astc.ErrorCode(0xDEADBEEF)); got != "" {
		t.Fatalf("ErrorString(unknown): got %q want %q", got, "")
	}
}

func TestErrorCodeOf(t *testing.T) {
	if got := astc.ErrorCodeOf(nil); got != astc.Success {
		t.Fatalf("ErrorCodeOf(nil): got %v want %v", got, astc.Success)
	}

	if _, err := astc.DefaultCompressionParams(astc.ProfileLDR, -1, astc.Footprint{X: 4, Y: 4, Z: 1}); err == nil {
		t.Fatalf("DefaultCompressionParams: got nil error, want error")
	} else if got := astc.ErrorCodeOf(err); got != astc.ErrBadQuality {
		t.Fatalf("ErrorCodeOf(bad quality): got %v want %v", got, astc.ErrBadQuality)
	}

	// Codes survive wrapping.
	_, err := astc.ParseProfile("hdr10")
	if got := astc.ErrorCodeOf(pkgerrors.Wrap(err, "load")); got != astc.ErrBadProfile {
		t.Fatalf("ErrorCodeOf(wrapped): got %v want %v", got, astc.ErrBadProfile)
	}

	if got := astc.ErrorCodeOf(errors.New("some other error")); got != astc.ErrBadParam {
		t.Fatalf("ErrorCodeOf(non-astc): got %v want %v", got, astc.ErrBadParam)
	}
}
