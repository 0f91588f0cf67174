package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayPathMountConvention(t *testing.T) {
	assert.Equal(t, `C:\Users\me`, displayPath("/mnt/c/Users/me"))
	assert.Equal(t, `D:\`, displayPath("/mnt/d/"))
}

func TestDisplayPathSlashNormalization(t *testing.T) {
	assert.Equal(t, `home\me\proj`, displayPath("home/me/proj"))
	assert.Equal(t, `C:\already\windows`, displayPath(`C:\already\windows`))
}

func TestDisplayPathDriveRootedSlugTail(t *testing.T) {
	assert.Equal(t, `C:\foo\bar\baz`, displayPath(`c:\-foo-bar-baz`))
}

func TestDisplayPathEmpty(t *testing.T) {
	assert.Empty(t, displayPath("   "))
}

func TestDecodeSlugDriveLetter(t *testing.T) {
	assert.Equal(t, `C:\users\me\proj`, decodeSlug("-c-users-me-proj"))
}

func TestDecodeSlugMountPrefix(t *testing.T) {
	assert.Equal(t, `D:\work\repo`, decodeSlug("-mnt-d-work-repo"))
}

func TestDecodeSlugPlainTokens(t *testing.T) {
	// No drive indicator: tokens are joined as a best guess.
	assert.Equal(t, `home\me\proj`, decodeSlug("-home-me-proj"))
}

func TestDecodeSlugPassthrough(t *testing.T) {
	// Already a path, or not a slug at all.
	assert.Equal(t, "/real/path", decodeSlug("/real/path"))
	assert.Equal(t, "plainname", decodeSlug("plainname"))
	assert.Empty(t, decodeSlug(""))
}

func TestProjectLabelPrefersCwd(t *testing.T) {
	assert.Equal(t, `C:\Users\me`, projectLabel("-c-users-other", "/mnt/c/Users/me"))
	assert.Equal(t, `C:\users\other`, projectLabel("-c-users-other", "  "))
}
