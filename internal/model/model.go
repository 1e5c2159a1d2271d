// Package model содержит доменные сущности сервиса клиентского дашборда.
package model

import (
	"fmt"

	"github.com/veloxhost/dashboard-system/internal/timestamp"
)

// Identity — личность текущего пользователя из подписанного cookie
// внешнего провайдера аутентификации.
type Identity struct {
	UserID      int64
	Email       string
	DisplayName string
}

// OrderStatus описывает статус жизненного цикла заказа.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusRefunded   OrderStatus = "refunded"
)

// OrderItem — позиция заказа.
type OrderItem struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Order описывает заказ пользователя. Метка времени создания хранится в
// исходном представлении документа и нормализуется при агрегации.
type Order struct {
	ID          string        `json:"id"`
	UserID      int64         `json:"user_id"`
	Items       []OrderItem   `json:"items,omitempty"`
	TotalAmount float64       `json:"total_amount"`
	Status      OrderStatus   `json:"status"`
	CreatedAt   timestamp.Raw `json:"created_at"`
}

// ServiceCategory описывает категорию предоставляемой услуги.
type ServiceCategory string

const (
	ServiceCategoryVPS       ServiceCategory = "vps"
	ServiceCategoryDomain    ServiceCategory = "domain"
	ServiceCategoryMinecraft ServiceCategory = "minecraft"
	ServiceCategoryBot       ServiceCategory = "bot"
	ServiceCategoryHosting   ServiceCategory = "hosting"
	ServiceCategoryCustom    ServiceCategory = "custom"
)

// ServiceStatus описывает статус предоставляемой услуги.
type ServiceStatus string

const (
	ServiceStatusActive    ServiceStatus = "active"
	ServiceStatusSuspended ServiceStatus = "suspended"
	ServiceStatusPending   ServiceStatus = "pending"
	ServiceStatusExpired   ServiceStatus = "expired"
)

// ServiceSpec — технические характеристики услуги в свободной форме.
type ServiceSpec struct {
	CPU       string `json:"cpu,omitempty"`
	RAM       string `json:"ram,omitempty"`
	Storage   string `json:"storage,omitempty"`
	Bandwidth string `json:"bandwidth,omitempty"`
}

// Service описывает предоставляемую пользователю услугу.
// Услуга без даты окончания никогда не считается «скоро истекающей».
type Service struct {
	ID         string          `json:"id"`
	UserID     int64           `json:"user_id"`
	Name       string          `json:"name"`
	Category   ServiceCategory `json:"category"`
	Status     ServiceStatus   `json:"status"`
	Price      float64         `json:"price"`
	ExpiryDate timestamp.Raw   `json:"expiry_date"`
	Spec       *ServiceSpec    `json:"spec,omitempty"`
}

// AlertCategory описывает категорию уведомления.
type AlertCategory string

const (
	AlertCategoryInfo    AlertCategory = "info"
	AlertCategoryWarning AlertCategory = "warning"
	AlertCategorySuccess AlertCategory = "success"
	AlertCategoryError   AlertCategory = "error"
	AlertCategoryRenewal AlertCategory = "renewal"
)

// AlertPriority описывает приоритет уведомления.
type AlertPriority string

const (
	AlertPriorityLow    AlertPriority = "low"
	AlertPriorityMedium AlertPriority = "medium"
	AlertPriorityHigh   AlertPriority = "high"
)

// Alert описывает уведомление пользователя. Флаг прочтения монотонный:
// слой агрегации его никогда не сбрасывает.
type Alert struct {
	ID          string        `json:"id"`
	UserID      int64         `json:"user_id"`
	Title       string        `json:"title"`
	Message     string        `json:"message"`
	Category    AlertCategory `json:"category"`
	Priority    AlertPriority `json:"priority"`
	Read        bool          `json:"read"`
	ActionURL   string        `json:"action_url,omitempty"`
	ActionLabel string        `json:"action_label,omitempty"`
	CreatedAt   timestamp.Raw `json:"created_at"`
}

// NotificationPreferences — настройки уведомлений в профиле пользователя.
type NotificationPreferences struct {
	EmailAlerts     bool `json:"email_alerts"`
	ServiceUpdates  bool `json:"service_updates"`
	ExpiryReminders bool `json:"expiry_reminders"`
	Marketing       bool `json:"marketing"`
}

// Profile описывает профиль пользователя из внешнего сервиса профилей.
type Profile struct {
	UserID      int64                   `json:"user_id"`
	DisplayName string                  `json:"display_name"`
	Email       string                  `json:"email"`
	Preferences NotificationPreferences `json:"preferences"`
}

// DashboardStats — производные показатели дашборда. Пересчитываются при
// каждом запросе и нигде не сохраняются.
type DashboardStats struct {
	TotalOrders      int     `json:"total_orders"`
	TotalSpent       float64 `json:"total_spent"`
	ActiveServices   int     `json:"active_services"`
	ExpiringServices int     `json:"expiring_services"`
	UnreadAlerts     int     `json:"unread_alerts"`
	AvgOrderValue    float64 `json:"avg_order_value"`
	SuccessRate      float64 `json:"success_rate"`
	// MonthlySpend намеренно дублирует TotalSpent выбранного окна,
	// поле сохранено для совместимости с представлением.
	MonthlySpend float64 `json:"monthly_spend"`
}

// ChannelStatus отмечает каналы выборки, для которых сработал фолбэк.
type ChannelStatus struct {
	Orders   bool `json:"orders"`
	Services bool `json:"services"`
	Alerts   bool `json:"alerts"`
	Profile  bool `json:"profile"`
}

// Any сообщает, деградировал ли хотя бы один канал.
func (c ChannelStatus) Any() bool {
	return c.Orders || c.Services || c.Alerts || c.Profile
}

// DashboardData — полный результат агрегации для представления.
type DashboardData struct {
	Stats    DashboardStats `json:"stats"`
	Orders   []Order        `json:"orders"`
	Services []Service      `json:"services"`
	Alerts   []Alert        `json:"alerts"`
	Profile  Profile        `json:"profile"`
	Degraded ChannelStatus  `json:"degraded"`
}

// TimeRange — символьный токен окна отчёта.
type TimeRange string

// Допустимые окна отчёта.
const (
	Range7Days  TimeRange = "7d"
	Range30Days TimeRange = "30d"
	Range90Days TimeRange = "90d"
	Range1Year  TimeRange = "1y"
)

// ParseTimeRange проверяет токен окна отчёта. Любое значение вне
// перечисленных четырёх — ошибка вызывающей стороны.
func ParseTimeRange(s string) (TimeRange, error) {
	switch TimeRange(s) {
	case Range7Days, Range30Days, Range90Days, Range1Year:
		return TimeRange(s), nil
	}
	return "", fmt.Errorf("unknown time range: %q", s)
}
