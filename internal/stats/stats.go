// Package stats вычисляет производные показатели дашборда.
package stats

import (
	"fmt"
	"time"

	"github.com/veloxhost/dashboard-system/internal/model"
)

const day = 24 * time.Hour

// ExpiringSoonWindow — горизонт, в пределах которого услуга считается
// «скоро истекающей».
const ExpiringSoonWindow = 30 * day

// WindowStart возвращает нижнюю границу окна отчёта относительно now.
// Токен к этому моменту уже проверен на границе API; неизвестное значение
// здесь — дефект в коде вызывающей стороны.
func WindowStart(r model.TimeRange, now time.Time) time.Time {
	switch r {
	case model.Range7Days:
		return now.Add(-7 * day)
	case model.Range30Days:
		return now.Add(-30 * day)
	case model.Range90Days:
		return now.Add(-90 * day)
	case model.Range1Year:
		return now.Add(-365 * day)
	default:
		panic(fmt.Sprintf("stats: unknown time range %q", r))
	}
}

// Aggregate считает показатели дашборда по выбранному окну.
// Функция чистая: входные коллекции не изменяются, текущее время передаётся
// явно. Заказы фильтруются по нормализованной метке создания; услуги и
// уведомления — инвентарь на текущий момент, окном не фильтруются.
func Aggregate(orders []model.Order, services []model.Service, alerts []model.Alert, r model.TimeRange, now time.Time) model.DashboardStats {
	start := WindowStart(r, now)

	var s model.DashboardStats

	var completed int
	for _, o := range orders {
		if o.CreatedAt.Time().Before(start) {
			continue
		}
		// Заказ без суммы всё равно учитывается в количестве.
		s.TotalOrders++
		s.TotalSpent += o.TotalAmount
		if o.Status == model.OrderStatusCompleted {
			completed++
		}
	}

	if s.TotalOrders > 0 {
		s.AvgOrderValue = s.TotalSpent / float64(s.TotalOrders)
		s.SuccessRate = float64(completed) / float64(s.TotalOrders) * 100
	} else {
		// Пустое окно по договорённости отдаётся как стопроцентный успех.
		s.SuccessRate = 100
	}

	expiryCutoff := now.Add(ExpiringSoonWindow)
	for _, svc := range services {
		if svc.Status == model.ServiceStatusActive {
			s.ActiveServices++
		}
		// Отсутствующая и нечитаемая дата окончания нормализуются в начало
		// эпохи и строгое сравнение с now их отсекает.
		exp := svc.ExpiryDate.Time()
		if exp.After(now) && !exp.After(expiryCutoff) {
			s.ExpiringServices++
		}
	}

	for _, a := range alerts {
		if !a.Read {
			s.UnreadAlerts++
		}
	}

	s.MonthlySpend = s.TotalSpent

	return s
}
