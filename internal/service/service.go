// Package service реализует бизнес-логику сервиса клиентского дашборда.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/veloxhost/dashboard-system/internal/model"
	"github.com/veloxhost/dashboard-system/internal/stats"
	"github.com/veloxhost/dashboard-system/internal/timestamp"
)

// Кол-во уведомлений, запрашиваемых для дашборда.
const dashboardAlertLimit = 50

const defaultFetchTimeout = 3 * time.Second

// Repository описывает контракт доступа к данным, используемый сервисом.
type Repository interface {
	Close() error
	GetOrdersByUser(ctx context.Context, userID int64) ([]model.Order, error)
	GetServicesByUser(ctx context.Context, userID int64) ([]model.Service, error)
	GetAlertsByUser(ctx context.Context, userID int64, limit int) ([]model.Alert, error)
	MarkAlertRead(ctx context.Context, userID int64, alertID string) error
	GetExpiringServices(ctx context.Context, from, to time.Time) ([]model.Service, error)
	CreateAlert(ctx context.Context, a model.Alert) (bool, error)
}

// ProfileProvider описывает контракт внешнего сервиса профилей.
type ProfileProvider interface {
	GetProfile(ctx context.Context, userID int64) (*model.Profile, error)
}

// Service содержит бизнес-логику сервиса клиентского дашборда.
type Service struct {
	repo         Repository
	profiles     ProfileProvider
	fetchTimeout time.Duration
}

// NewService создаёт новый сервис с указанным репозиторием и клиентом
// сервиса профилей. fetchTimeout ограничивает каждый канал выборки по
// отдельности; ноль означает значение по умолчанию.
func NewService(repo Repository, profiles ProfileProvider, fetchTimeout time.Duration) *Service {
	if fetchTimeout <= 0 {
		fetchTimeout = defaultFetchTimeout
	}

	return &Service{
		repo:         repo,
		profiles:     profiles,
		fetchTimeout: fetchTimeout,
	}
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.repo != nil {
		return s.repo.Close()
	}
	return nil
}

// fetched — результаты четырёх независимых каналов выборки.
type fetched struct {
	orders   []model.Order
	services []model.Service
	alerts   []model.Alert
	profile  model.Profile
	degraded model.ChannelStatus
}

// fetchAll запускает четыре выборки параллельно и ждёт завершения всех.
// Отказ канала не роняет остальные: вместо данных подставляется пустая
// коллекция или профиль по умолчанию, а канал помечается деградировавшим.
// Таймаут канала равнозначен его отказу.
func (s *Service) fetchAll(ctx context.Context, ident model.Identity) fetched {
	var (
		orders   []model.Order
		services []model.Service
		alerts   []model.Alert
		prof     *model.Profile

		ordersErr, servicesErr, alertsErr, profileErr error
	)

	g := new(errgroup.Group)

	g.Go(func() error {
		cctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
		defer cancel()
		orders, ordersErr = s.repo.GetOrdersByUser(cctx, ident.UserID)
		return nil
	})

	g.Go(func() error {
		cctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
		defer cancel()
		services, servicesErr = s.repo.GetServicesByUser(cctx, ident.UserID)
		return nil
	})

	g.Go(func() error {
		cctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
		defer cancel()
		alerts, alertsErr = s.repo.GetAlertsByUser(cctx, ident.UserID, dashboardAlertLimit)
		return nil
	})

	g.Go(func() error {
		cctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
		defer cancel()
		prof, profileErr = s.profiles.GetProfile(cctx, ident.UserID)
		return nil
	})

	// Замыкания ошибок не возвращают, Wait здесь только барьер.
	_ = g.Wait()

	f := fetched{
		orders:   orders,
		services: services,
		alerts:   alerts,
	}

	if ordersErr != nil {
		f.orders = nil
		f.degraded.Orders = true
	}
	if servicesErr != nil {
		f.services = nil
		f.degraded.Services = true
	}
	if alertsErr != nil {
		f.alerts = nil
		f.degraded.Alerts = true
	}

	// Отсутствующий профиль деградирует так же, как и отказавший.
	if profileErr != nil || prof == nil {
		f.profile = defaultProfile(ident)
		f.degraded.Profile = true
	} else {
		f.profile = *prof
	}

	if f.orders == nil {
		f.orders = []model.Order{}
	}
	if f.services == nil {
		f.services = []model.Service{}
	}
	if f.alerts == nil {
		f.alerts = []model.Alert{}
	}

	return f
}

// defaultProfile синтезирует профиль из известной личности пользователя.
// Настройки фиксированные: все уведомления включены, маркетинг выключен.
func defaultProfile(ident model.Identity) model.Profile {
	name := ident.DisplayName
	if name == "" {
		if i := strings.IndexByte(ident.Email, '@'); i > 0 {
			name = ident.Email[:i]
		}
	}

	return model.Profile{
		UserID:      ident.UserID,
		DisplayName: name,
		Email:       ident.Email,
		Preferences: model.NotificationPreferences{
			EmailAlerts:     true,
			ServiceUpdates:  true,
			ExpiryReminders: true,
			Marketing:       false,
		},
	}
}

// DashboardData собирает данные дашборда: выборка по четырём каналам и
// расчёт показателей по выбранному окну. Отказ канала ошибкой не считается;
// единственная возможная ошибка — неизвестный токен окна, то есть дефект
// вызывающей стороны.
func (s *Service) DashboardData(ctx context.Context, ident model.Identity, rng model.TimeRange, now time.Time) (*model.DashboardData, error) {
	if _, err := model.ParseTimeRange(string(rng)); err != nil {
		return nil, err
	}

	f := s.fetchAll(ctx, ident)

	return &model.DashboardData{
		Stats:    stats.Aggregate(f.orders, f.services, f.alerts, rng, now),
		Orders:   f.orders,
		Services: f.services,
		Alerts:   f.alerts,
		Profile:  f.profile,
		Degraded: f.degraded,
	}, nil
}

// GetOrdersByUser возвращает заказы пользователя.
func (s *Service) GetOrdersByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	return s.repo.GetOrdersByUser(ctx, userID)
}

// GetServicesByUser возвращает услуги пользователя.
func (s *Service) GetServicesByUser(ctx context.Context, userID int64) ([]model.Service, error) {
	return s.repo.GetServicesByUser(ctx, userID)
}

// GetAlertsByUser возвращает уведомления пользователя.
func (s *Service) GetAlertsByUser(ctx context.Context, userID int64, limit int) ([]model.Alert, error) {
	if limit <= 0 {
		limit = dashboardAlertLimit
	}
	return s.repo.GetAlertsByUser(ctx, userID, limit)
}

// MarkAlertRead помечает уведомление пользователя прочитанным.
func (s *Service) MarkAlertRead(ctx context.Context, userID int64, alertID string) error {
	return s.repo.MarkAlertRead(ctx, userID, alertID)
}

// StartRenewalAlerts запускает цикл напоминаний о продлении и блокируется
// до отмены контекста: по активным услугам, истекающим в ближайшие 30 дней,
// создаётся уведомление категории renewal, не чаще раза в месяц на услугу.
func (s *Service) StartRenewalAlerts(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.processRenewalBatch(ctx, time.Now().UTC())
		}
	}
}

func (s *Service) processRenewalBatch(ctx context.Context, now time.Time) {
	services, err := s.repo.GetExpiringServices(ctx, now, now.Add(stats.ExpiringSoonWindow))
	if err != nil {
		return
	}

	for _, svc := range services {
		if svc.Status != model.ServiceStatusActive {
			continue
		}

		_, _ = s.repo.CreateAlert(ctx, renewalAlert(svc, now))
	}
}

func renewalAlert(svc model.Service, now time.Time) model.Alert {
	exp := svc.ExpiryDate.Time()

	priority := model.AlertPriorityMedium
	if exp.Before(now.Add(7 * 24 * time.Hour)) {
		priority = model.AlertPriorityHigh
	}

	return model.Alert{
		// Детерминированный идентификатор: одна услуга — одно напоминание в месяц.
		ID:          fmt.Sprintf("renewal-%s-%s", svc.ID, now.Format("2006-01")),
		UserID:      svc.UserID,
		Title:       fmt.Sprintf("%s expires soon", svc.Name),
		Message:     fmt.Sprintf("Service %q expires on %s. Renew it to avoid interruption.", svc.Name, exp.Format("2006-01-02")),
		Category:    model.AlertCategoryRenewal,
		Priority:    priority,
		ActionURL:   "/services/" + svc.ID,
		ActionLabel: "Renew",
		CreatedAt:   timestamp.FromTime(now),
	}
}
