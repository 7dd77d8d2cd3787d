package boot

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raccog/caliga-bootloader/boot/alloc"
)

func TestDeviceTable(t *testing.T) {
	pool := newPool(t, 8)
	tbl := NewDeviceTable(pool)

	uart := Device{Name: "pl011", Base: 0x0900_0000, Kind: DeviceUART}
	disk := Device{Name: "virtio-blk0", Base: 0x0a00_0000, Kind: DeviceBlock}

	hu, err := tbl.Register(uart)
	require.NoError(t, err)
	hd, err := tbl.Register(disk)
	require.NoError(t, err)
	require.NotEqual(t, hu, hd)
	require.Equal(t, 2, pool.InUse())

	got, h, ok := tbl.Lookup("pl011")
	require.True(t, ok)
	assert.Equal(t, uart, got)
	assert.Equal(t, hu, h)

	assert.Equal(t, []Device{uart, disk}, tbl.Devices())

	_, err = tbl.Register(Device{Name: "pl011", Kind: DeviceUART})
	require.ErrorIs(t, err, ErrDeviceExists)

	require.NoError(t, tbl.Remove(hu))
	require.ErrorIs(t, tbl.Remove(hu), ErrNoDevice)
	_, _, ok = tbl.Lookup("pl011")
	require.False(t, ok)
	require.Equal(t, 1, pool.InUse())
	require.Equal(t, 1, tbl.Len())
}

func TestDeviceTable_Names(t *testing.T) {
	tbl := NewDeviceTable(newPool(t, 4))

	_, err := tbl.Register(Device{Kind: DeviceUART})
	require.ErrorIs(t, err, ErrDeviceName)

	// 64 byte slabs leave 48 bytes for the name.
	_, err = tbl.Register(Device{Name: strings.Repeat("n", 49), Kind: DeviceUART})
	require.ErrorIs(t, err, ErrDeviceName)

	_, err = tbl.Register(Device{Name: strings.Repeat("n", 48), Kind: DeviceUART})
	require.NoError(t, err)
}

func TestDeviceTable_PoolExhausted(t *testing.T) {
	pool := newPool(t, 2)
	tbl := NewDeviceTable(pool)

	for i := 0; i < pool.Capacity(); i++ {
		_, err := tbl.Register(Device{Name: string(rune('a' + i)), Kind: DeviceBlock})
		require.NoError(t, err)
	}
	_, err := tbl.Register(Device{Name: "overflow", Kind: DeviceBlock})
	require.ErrorIs(t, err, alloc.ErrAlloc)
}

func TestDeviceKind_Text(t *testing.T) {
	for _, k := range []DeviceKind{DeviceUART, DeviceBlock, DeviceFramebuffer} {
		text, err := k.MarshalText()
		require.NoError(t, err)
		var back DeviceKind
		require.NoError(t, back.UnmarshalText(text))
		require.Equal(t, k, back)
	}
	assert.Equal(t, "device(9)", DeviceKind(9).String())
}
