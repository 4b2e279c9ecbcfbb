package models

import (
	"time"
)

type User struct {
	ID           uint       `gorm:"primaryKey;autoIncrement"          json:"id"`
	Email        string     `gorm:"size:255;uniqueIndex;not null"     json:"email"`
	Phone        string     `gorm:"size:20;index"                     json:"phone"`
	PasswordHash string     `gorm:"size:255;not null"                 json:"-"`
	FirstName    string     `gorm:"size:100"                          json:"first_name"`
	LastName     string     `gorm:"size:100"                          json:"last_name"`
	Role         string     `gorm:"size:20;not null;default:customer" json:"role"`
	IsActive     bool       `gorm:"default:true"                      json:"is_active"`
	IsVerified   bool       `gorm:"default:false"                     json:"is_verified"`
	ProfileImage string     `gorm:"size:255"                          json:"profile_image,omitempty"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"           json:"id"`
	Token     string `gorm:"uniqueIndex;not null" json:"token"`
	UserID    uint   `gorm:"index;not null"       json:"user_id"`
	Role      string `gorm:"size:20"              json:"role"`
	ExpiresAt int64  `gorm:"not null"             json:"expires_at"`
	Revoked   bool   `gorm:"default:false"        json:"revoked"`
}

type MenuCategory struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string    `gorm:"size:100;not null"        json:"name"`
	Description  string    `gorm:"type:text"                json:"description"`
	DisplayOrder int       `gorm:"default:0"                json:"display_order"`
	IsActive     bool      `gorm:"default:true"             json:"is_active"`
	Icon         string    `gorm:"size:100"                 json:"icon,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	MenuItems []MenuItem `gorm:"foreignKey:CategoryID" json:"menu_items,omitempty"`
}

type MenuItem struct {
	ID                   uint      `gorm:"primaryKey;autoIncrement"  json:"id"`
	Name                 string    `gorm:"size:200;not null"         json:"name"`
	Description          string    `gorm:"type:text"                 json:"description"`
	Price                float64   `gorm:"not null"                  json:"price"`
	CategoryID           uint      `gorm:"index"                     json:"category_id"`
	ImageURL             string    `gorm:"size:255"                  json:"image_url,omitempty"`
	ThumbnailURL         string    `gorm:"size:255"                  json:"thumbnail_url,omitempty"`
	Calories             int       `json:"calories,omitempty"`
	Ingredients          string    `gorm:"type:text"                 json:"ingredients,omitempty"`
	Allergens            string    `gorm:"type:text"                 json:"allergens,omitempty"`
	DietaryTags          string    `gorm:"type:text"                 json:"dietary_tags,omitempty"`
	IsAvailable          bool      `gorm:"default:true"              json:"is_available"`
	IsFeatured           bool      `gorm:"default:false"             json:"is_featured"`
	Status               string    `gorm:"size:12;default:available" json:"status"`
	PreparationTime      int       `gorm:"default:15"                json:"preparation_time"`
	SpiceLevel           int       `json:"spice_level,omitempty"`
	Customizable         bool      `gorm:"default:false"             json:"customizable"`
	CustomizationOptions string    `gorm:"type:text"                 json:"customization_options,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

type Order struct {
	ID                 uint       `gorm:"primaryKey;autoIncrement"                 json:"id"`
	OrderNumber        string     `gorm:"size:50;uniqueIndex;not null"             json:"order_number"`
	CustomerID         uint       `gorm:"index"                                    json:"customer_id"`
	Status             string     `gorm:"size:20;not null;default:pending_payment" json:"status"`
	PaymentStatus      string     `gorm:"size:20;not null;default:pending"         json:"payment_status"`
	Subtotal           float64    `gorm:"default:0"                                json:"subtotal"`
	TaxAmount          float64    `gorm:"default:0"                                json:"tax_amount"`
	TipAmount          float64    `gorm:"default:0"                                json:"tip_amount"`
	TotalAmount        float64    `gorm:"not null"                                 json:"total_amount"`
	CustomerName       string     `gorm:"size:200"                                 json:"customer_name"`
	CustomerPhone      string     `gorm:"size:20"                                  json:"customer_phone"`
	CustomerEmail      string     `gorm:"size:255"                                 json:"customer_email"`
	Notes              string     `gorm:"type:text"                                json:"notes,omitempty"`
	EstimatedReadyTime *time.Time `json:"estimated_ready_time,omitempty"`
	ActualReadyTime    *time.Time `json:"actual_ready_time,omitempty"`
	PaymentMethod      string     `gorm:"size:50"                                  json:"payment_method,omitempty"`
	PaymentReference   string     `gorm:"size:100"                                 json:"payment_reference,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// OrderItem carries a price snapshot taken at order time; it must not track
// later menu price changes.
type OrderItem struct {
	ID             uint    `gorm:"primaryKey;autoIncrement"  json:"id"`
	OrderID        uint    `gorm:"index;not null"            json:"order_id"`
	MenuItemID     uint    `gorm:"not null"                  json:"menu_item_id"`
	Quantity       int     `gorm:"not null;check:quantity>0" json:"quantity"`
	UnitPrice      float64 `gorm:"not null"                  json:"unit_price"`
	TotalPrice     float64 `gorm:"not null"                  json:"total_price"`
	Customizations string  `gorm:"type:text"                 json:"customizations,omitempty"`
	Notes          string  `gorm:"type:text"                 json:"notes,omitempty"`
}

type BankTransfer struct {
	ID                 uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID            uint       `gorm:"index;not null"           json:"order_id"`
	SenderName         string     `gorm:"size:200"                 json:"sender_name"`
	SenderAccount      string     `gorm:"size:100"                 json:"sender_account,omitempty"`
	TransferAmount     float64    `gorm:"not null"                 json:"transfer_amount"`
	TransferDate       *time.Time `json:"transfer_date,omitempty"`
	ReferenceNumber    string     `gorm:"size:100"                 json:"reference_number"`
	ReceiptImagePath   string     `gorm:"size:255"                 json:"receipt_image_path,omitempty"`
	VerificationStatus string     `gorm:"size:20;default:pending"  json:"verification_status"`
	ConfirmedBy        uint       `json:"confirmed_by,omitempty"`
	ConfirmedAt        *time.Time `json:"confirmed_at,omitempty"`
	Notes              string     `gorm:"type:text"                json:"notes,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

type Notification struct {
	ID               uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID           uint       `gorm:"index;not null"           json:"user_id"`
	OrderID          *uint      `gorm:"index"                    json:"order_id,omitempty"`
	Title            string     `gorm:"size:200;not null"        json:"title"`
	Message          string     `gorm:"type:text;not null"       json:"message"`
	Type             string     `gorm:"size:50"                  json:"type"`
	NotificationType string     `gorm:"size:50"                  json:"notification_type"`
	IsRead           bool       `gorm:"default:false"            json:"is_read"`
	ReadAt           *time.Time `json:"read_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

type Review struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"              json:"id"`
	CustomerID   uint      `gorm:"index;not null"                        json:"customer_id"`
	MenuItemID   uint      `gorm:"index;not null"                        json:"menu_item_id"`
	OrderID      uint      `gorm:"index"                                 json:"order_id"`
	Rating       int       `gorm:"not null;check:rating BETWEEN 1 AND 5" json:"rating"`
	Comment      string    `gorm:"type:text"                             json:"comment,omitempty"`
	IsVerified   bool      `gorm:"default:false"                         json:"is_verified"`
	HelpfulCount int       `gorm:"default:0"                             json:"helpful_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type AppSettings struct {
	ID                uint      `gorm:"primaryKey"   json:"id"`
	WhatsappLink      string    `gorm:"size:255"     json:"whatsapp_link"`
	WhatsappEnabled   bool      `gorm:"default:true" json:"whatsapp_enabled"`
	RestaurantName    string    `gorm:"size:200"     json:"restaurant_name"`
	RestaurantPhone   string    `gorm:"size:20"      json:"restaurant_phone"`
	RestaurantEmail   string    `gorm:"size:255"     json:"restaurant_email"`
	RestaurantAddress string    `gorm:"size:255"     json:"restaurant_address"`
	UpdatedAt         time.Time `json:"updated_at"`
}
