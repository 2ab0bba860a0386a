package attendance_test

import (
	"context"
	"errors"
	"testing"

	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/attendance/store"
)

func TestCalculate_MultipliesDaysByRate(t *testing.T) {
	m := store.NewMemory()
	m.PutRate("emp-ana", attendance.NewMoneyFromInt(500))
	calc := attendance.NewCalculator(m)

	amount, err := calc.Calculate(context.Background(), "emp-ana", 2)
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	if !amount.Equal(attendance.NewMoneyFromInt(1000)) {
		t.Errorf("Expected 1000.00, got %s", amount)
	}
}

func TestCalculate_RoundsHalfUpToCurrencyUnit(t *testing.T) {
	// GIVEN: A fractional rate whose multiple lands on a half cent
	m := store.NewMemory()
	rate, err := attendance.ParseMoney("333.335")
	if err != nil {
		t.Fatalf("ParseMoney failed: %v", err)
	}
	m.PutRate("emp-ana", rate)
	calc := attendance.NewCalculator(m)

	// WHEN: 3 days x 333.335 = 1000.005
	amount, err := calc.Calculate(context.Background(), "emp-ana", 3)
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}

	// THEN: Rounded half-up to 1000.01
	want, _ := attendance.ParseMoney("1000.01")
	if !amount.Equal(want) {
		t.Errorf("Expected 1000.01, got %s", amount)
	}
}

func TestCalculate_ZeroDaysSkipsRateLookup(t *testing.T) {
	// GIVEN: No rate configured at all
	m := store.NewMemory()
	calc := attendance.NewCalculator(m)

	// WHEN: Zero penalty days
	amount, err := calc.Calculate(context.Background(), "emp-ana", 0)

	// THEN: Zero without touching the rate source
	if err != nil {
		t.Fatalf("Zero days must not require a rate: %v", err)
	}
	if !amount.IsZero() {
		t.Errorf("Expected zero, got %s", amount)
	}
}

func TestCalculate_MissingRate(t *testing.T) {
	m := store.NewMemory()
	calc := attendance.NewCalculator(m)

	_, err := calc.Calculate(context.Background(), "emp-ana", 2)
	if !errors.Is(err, attendance.ErrRateNotFound) {
		t.Errorf("Expected ErrRateNotFound, got %v", err)
	}
}

func TestCalculate_NegativeRateYieldsZero(t *testing.T) {
	m := store.NewMemory()
	m.PutRate("emp-ana", attendance.NewMoney(-500))
	calc := attendance.NewCalculator(m)

	amount, err := calc.Calculate(context.Background(), "emp-ana", 2)
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	if !amount.IsZero() {
		t.Errorf("A negative rate must never produce a charge, got %s", amount)
	}
}

func TestMoney_StringIsFixedTwoDecimals(t *testing.T) {
	if got := attendance.NewMoneyFromInt(1000).String(); got != "1000.00" {
		t.Errorf("Expected 1000.00, got %s", got)
	}
}
