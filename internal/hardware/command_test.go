package hardware

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "autonaver/internal/errors"
)

func TestParseIoregUUID(t *testing.T) {
	out := `+-o MacBookPro18,3  <class IOPlatformExpertDevice, id 0x100000227>
    {
      "IOPlatformSerialNumber" = "C02XXXXXXXX"
      "IOPlatformUUID" = "3F2504E0-4F89-11D3-9A0C-0305E82C3301"
    }`

	assert.Equal(t, "3F2504E0-4F89-11D3-9A0C-0305E82C3301", parseIoregUUID(out))
	assert.Empty(t, parseIoregUUID("no uuid here"))
}

func TestParseWmicValue(t *testing.T) {
	out := "UUID                                  \r\r\n4C4C4544-0042-3510-8052-B4C04F4E4D32  \r\r\n\r\r\n"

	assert.Equal(t, "4C4C4544-0042-3510-8052-B4C04F4E4D32", parseWmicValue(out))
	assert.Empty(t, parseWmicValue("UUID\r\n"))
}

func TestParseRootDevice(t *testing.T) {
	mounts := `sysfs /sys sysfs rw,nosuid 0 0
overlay /var/lib/docker overlay rw 0 0
/dev/nvme0n1p2 / ext4 rw,relatime 0 0
/dev/nvme0n1p1 /boot/efi vfat rw 0 0`

	assert.Equal(t, "/dev/nvme0n1p2", parseRootDevice(mounts))
	assert.Empty(t, parseRootDevice("overlay / overlay rw 0 0"))
}

func TestParseDiskutilVolumeUUID(t *testing.T) {
	out := `   Device Identifier:         disk3s1s1
   Volume Name:               Macintosh HD
   Volume UUID:               0A81F3B1-51D9-3335-B3E3-169C3640360D
   Disk / Partition UUID:     0A81F3B1-51D9-3335-B3E3-169C3640360D`

	assert.Equal(t, "0A81F3B1-51D9-3335-B3E3-169C3640360D", parseDiskutilVolumeUUID(out))
}

func TestFirstTrustedProductUUID(t *testing.T) {
	ctx := context.Background()
	placeholder := func(context.Context) (string, error) { return "To be filled by O.E.M.", nil }
	broken := func(context.Context) (string, error) { return "", errors.New("powershell missing") }
	genuine := func(context.Context) (string, error) { return "4C4C4544-0042-3510-8052-B4C04F4E4D32", nil }

	got, err := firstTrustedProductUUID(ctx, broken, placeholder, genuine)
	require.NoError(t, err)
	assert.Equal(t, "4C4C4544-0042-3510-8052-B4C04F4E4D32", got)

	got, err = firstTrustedProductUUID(ctx, broken, placeholder)
	require.NoError(t, err)
	assert.Equal(t, "To be filled by O.E.M.", got)

	_, err = firstTrustedProductUUID(ctx, broken)
	assert.EqualError(t, err, "powershell missing")

	_, err = firstTrustedProductUUID(ctx)
	assert.ErrorIs(t, err, apperrors.ErrSignalUnavailable)
}

func TestRawMACAddress(t *testing.T) {
	original := listInterfaces
	t.Cleanup(func() { listInterfaces = original })

	listInterfaces = interfaces(iface(4, "02:aa:bb:cc:dd:ee", net.FlagUp))
	assert.Equal(t, "02:aa:bb:cc:dd:ee", RawMACAddress())

	listInterfaces = func() ([]net.Interface, error) { return nil, errors.New("denied") }
	assert.Equal(t, NoMACAddress, RawMACAddress())

	listInterfaces = interfaces()
	assert.Equal(t, NoMACAddress, RawMACAddress())
}

func TestLocalIPNeverEmpty(t *testing.T) {
	ip := LocalIP(context.Background())
	assert.NotNil(t, net.ParseIP(ip))
}
