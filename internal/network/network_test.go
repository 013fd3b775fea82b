package network

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnnaPov19/DogFeeder/internal/lcd"
)

func TestWait_AlreadyOnline(t *testing.T) {
	d := lcd.NewFake(16, 2)
	err := Wait(context.Background(), CheckerFunc(func() bool { return true }), d, 16, time.Millisecond, zerolog.Nop())
	require.NoError(t, err)
	assert.Empty(t, d.Writes(), "no animation when already online")
}

func TestWait_AnimatesUntilOnline(t *testing.T) {
	d := lcd.NewFake(4, 2)
	var checks atomic.Int32
	online := CheckerFunc(func() bool { return checks.Add(1) > 7 })

	err := Wait(context.Background(), online, d, 4, time.Millisecond, zerolog.Nop())
	require.NoError(t, err)

	writes := d.Writes()
	require.GreaterOrEqual(t, len(writes), 7)
	assert.Equal(t, Banner, writes[0])
	// One full pass of dots, then blanks.
	assert.Equal(t, []string{".", ".", ".", ".", " ", " "}, writes[1:7])
	assert.Equal(t, "", d.Line(0), "display cleared once online")
}

func TestWait_Cancelled(t *testing.T) {
	d := lcd.NewFake(16, 2)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := Wait(ctx, CheckerFunc(func() bool { return false }), d, 16, time.Millisecond, zerolog.Nop())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, Banner, d.Line(0))
}

func TestReadInfo(t *testing.T) {
	t.Setenv(envNetworkStatus, "")
	assert.Nil(t, ReadInfo())

	t.Setenv(envNetworkStatus, "connected")
	t.Setenv(envNetworkType, "wifi")
	t.Setenv(envNetworkIP, "192.168.1.50")
	t.Setenv(envNetworkWifiSSID, "home")

	info := ReadInfo()
	require.NotNil(t, info)
	assert.Equal(t, "connected", info.Status)
	assert.Equal(t, "connected wifi 192.168.1.50 home", info.Describe())
}

func TestInterface_UnknownName(t *testing.T) {
	assert.False(t, Interface{Name: "does-not-exist0"}.Online())
}
