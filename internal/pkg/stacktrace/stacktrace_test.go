package stacktrace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const sample = `goroutine 7 [running]:
runtime/debug.Stack()
	/usr/local/go/src/runtime/debug/stack.go:26 +0x5e
github.com/shandysiswandi/totphog/internal/vault/store.(*Store).Add(0xc000010000)
	/src/totphog/internal/vault/store/store.go:120 +0x1d
github.com/shandysiswandi/totphog/internal/vault/usecase.(*Usecase).Create(0xc000020000)
	/src/totphog/internal/vault/usecase/create.go:42 +0x88
github.com/shandysiswandi/totphog/internal/vault/usecase.(*Usecase).Create(0xc000020000)
	/src/totphog/internal/vault/usecase/create.go:42 +0x88
net/http.HandlerFunc.ServeHTTP(0x0)
	/usr/local/go/src/net/http/server.go:2294 +0x29
`

func TestInternalPaths(t *testing.T) {
	got := InternalPaths([]byte(sample))

	assert.Equal(t, []string{
		"internal/vault/store/store.go:120",
		"internal/vault/usecase/create.go:42",
	}, got)
}

func TestInternalPaths_NoInternalFrames(t *testing.T) {
	assert.Empty(t, InternalPaths([]byte("goroutine 1 [running]:\nmain.main()\n\t/src/main.go:10 +0x1\n")))
	assert.Empty(t, InternalPaths(nil))
}

func TestOrigin(t *testing.T) {
	assert.Equal(t, "internal/vault/store/store.go:120", Origin([]byte(sample)))
	assert.Equal(t, "", Origin([]byte("no frames")))
}

func TestTrim(t *testing.T) {
	got, ok := Trim("/src/app/internal/vault/store/store.go")
	assert.True(t, ok)
	assert.Equal(t, "internal/vault/store/store.go", got)

	_, ok = Trim("/usr/local/go/src/net/http/server.go")
	assert.False(t, ok)
}
