package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Qilleer/debughampirdone/utils"
)

const testStaticQRIS = "00020101021126610014COM.GO-JEK.WWW01189360091430123456780210G1234567890303UMI51440014ID.CO.QRIS.WWW0215ID10200123456780303UMI5204581253033605802ID5912TOKO CONTOH16007KOTA Z6105123456304ABCD"

func newTestPaymentManager(t *testing.T) *PaymentManager {
	t.Helper()

	store, err := utils.NewUserStore(t.TempDir())
	require.NoError(t, err)

	cfg := &utils.Config{
		Payment: &utils.PaymentConfig{
			QRISText:            testStaticQRIS,
			FirstSlotPrice:      15000,
			AdditionalSlotPrice: 5000,
			PremiumDurationDays: 30,
			PaymentTimeoutMin:   15,
		},
		Settings: &utils.ConfigSettings{},
	}
	return NewPaymentManager(cfg, store, nil)
}

func TestCreatePayment(t *testing.T) {
	pm := newTestPaymentManager(t)

	tx, png, err := pm.CreatePayment(100, PaymentFirstSlot)
	require.NoError(t, err)
	assert.Equal(t, 15000, tx.UniqueAmount)
	assert.Equal(t, PaymentFirstSlot, tx.Type)
	assert.NotEmpty(t, png)
	assert.WithinDuration(t, tx.CreatedAt.Add(15*time.Minute), tx.ExpiresAt, time.Second)

	assert.Equal(t, tx, pm.GetPending(tx.TrxID))
}

func TestCreatePaymentUniqueAmounts(t *testing.T) {
	pm := newTestPaymentManager(t)

	tx1, _, err := pm.CreatePayment(100, PaymentFirstSlot)
	require.NoError(t, err)
	tx2, _, err := pm.CreatePayment(200, PaymentFirstSlot)
	require.NoError(t, err)
	tx3, _, err := pm.CreatePayment(300, PaymentFirstSlot)
	require.NoError(t, err)

	// Nominal sama di-bump +1 sampai unik, supaya mutasi bisa dipetakan balik
	assert.Equal(t, 15000, tx1.UniqueAmount)
	assert.Equal(t, 15001, tx2.UniqueAmount)
	assert.Equal(t, 15002, tx3.UniqueAmount)
}

func TestCreatePaymentOnePendingPerUser(t *testing.T) {
	pm := newTestPaymentManager(t)

	_, _, err := pm.CreatePayment(100, PaymentFirstSlot)
	require.NoError(t, err)

	_, _, err = pm.CreatePayment(100, PaymentFirstSlot)
	assert.Error(t, err)
}

func TestCancelPayment(t *testing.T) {
	pm := newTestPaymentManager(t)

	tx, _, err := pm.CreatePayment(100, PaymentFirstSlot)
	require.NoError(t, err)

	// User lain tidak bisa membatalkan transaksi orang
	assert.False(t, pm.CancelPayment(999, tx.TrxID))
	assert.NotNil(t, pm.GetPending(tx.TrxID))

	assert.True(t, pm.CancelPayment(100, tx.TrxID))
	assert.Nil(t, pm.GetPending(tx.TrxID))

	// Cancel kedua kali jadi no-op
	assert.False(t, pm.CancelPayment(100, tx.TrxID))
}

func TestPriceForRenewal(t *testing.T) {
	pm := newTestPaymentManager(t)

	// Belum pernah premium: dihitung seperti 1 slot
	assert.Equal(t, 15000, pm.priceFor(100, PaymentRenewal))

	// 3 slot: harga dasar + 2 slot tambahan
	require.NoError(t, pm.store.AddPremium(100, 30, 3))
	assert.Equal(t, 25000, pm.priceFor(100, PaymentRenewal))
}

func TestPriceForSlotTypes(t *testing.T) {
	pm := newTestPaymentManager(t)

	assert.Equal(t, 15000, pm.priceFor(100, PaymentFirstSlot))
	assert.Equal(t, 5000, pm.priceFor(100, PaymentAdditionalSlot))
}

func TestCheckPaymentUnknownTransaction(t *testing.T) {
	pm := newTestPaymentManager(t)

	_, err := pm.CheckPaymentStatus("TRX-TIDAK-ADA")
	assert.Error(t, err)
}
