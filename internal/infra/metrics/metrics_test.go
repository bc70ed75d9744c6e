package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("не удалось прочитать счётчик: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestObserveLedgerResults(t *testing.T) {
	cases := []struct {
		applied bool
		err     error
		result  string
	}{
		{applied: true, result: "applied"},
		{applied: false, result: "rejected"},
		{applied: true, err: errors.New("db"), result: "error"},
	}
	for _, tc := range cases {
		counter := LedgerOperations.WithLabelValues("consume_test", tc.result)
		before := counterValue(t, counter)
		ObserveLedger("consume_test", tc.applied, tc.err)
		if got := counterValue(t, counter) - before; got != 1 {
			t.Fatalf("%s: ожидалось приращение 1, получено %v", tc.result, got)
		}
	}
}

func TestObserveNetworkRequestDefaultsLabels(t *testing.T) {
	counter := NetworkRequestTotal.WithLabelValues("unknown", "unknown", "unknown", "error")
	before := counterValue(t, counter)
	ObserveNetworkRequest("", "", "", time.Now(), errors.New("timeout"))
	if got := counterValue(t, counter) - before; got != 1 {
		t.Fatalf("ожидалось приращение 1, получено %v", got)
	}
}

func TestObserveUpdateStatus(t *testing.T) {
	ok := UpdatesTotal.WithLabelValues("message_test", "success")
	failed := UpdatesTotal.WithLabelValues("message_test", "error")
	ObserveUpdate("message_test", time.Now(), nil)
	ObserveUpdate("message_test", time.Now(), errors.New("boom"))
	if counterValue(t, ok) != 1 || counterValue(t, failed) != 1 {
		t.Fatal("статусы апдейтов посчитаны неверно")
	}
}

func TestMustRegisterOnFreshRegistry(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("регистрация не должна паниковать: %v", r)
		}
	}()
	MustRegister(prometheus.NewRegistry())
}
