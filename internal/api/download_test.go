package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBuildContentDisposition(t *testing.T) {
	t.Parallel()

	got := buildContentDisposition("試合_0102_blue_marked.xlsx")
	want := "attachment; filename=\"___0102_blue_marked.xlsx\"; filename*=UTF-8''%E8%A9%A6%E5%90%88_0102_blue_marked.xlsx"
	require.Equal(t, want, got)

	got = buildContentDisposition(`a "b".xlsx`)
	want = "attachment; filename=\"a _b_.xlsx\"; filename*=UTF-8''a%20%22b%22.xlsx"
	require.Equal(t, want, got)
}

func TestDownloadStore_TakeOnceAndExpire(t *testing.T) {
	t.Parallel()

	s := newDownloadStore()
	token := s.put("a.xlsx", []byte("x"), time.Minute)
	require.NotEmpty(t, token)

	item, ok := s.take(token)
	require.True(t, ok)
	require.Equal(t, "a.xlsx", item.filename)
	require.Equal(t, []byte("x"), item.data)

	_, ok = s.take(token)
	require.False(t, ok)

	expired := s.put("b.xlsx", []byte("y"), -time.Second)
	_, ok = s.take(expired)
	require.False(t, ok)
	require.Equal(t, 0, s.size())
}
