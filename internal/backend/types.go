package backend

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/JKPrasad01/FoodAppFrontend/pkg/enums"
	"github.com/shopspring/decimal"
)

// Ref is an identifier the backend encodes either as a JSON number or a string.
type Ref string

func (r *Ref) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == "" {
		*r = ""
		return nil
	}
	if strings.HasPrefix(trimmed, "\"") {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode ref: %w", err)
		}
		*r = Ref(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decode ref: %w", err)
	}
	*r = Ref(n.String())
	return nil
}

func (r Ref) String() string { return string(r) }

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Timestamp accepts RFC 3339, zone-less local date-times (interpreted as UTC)
// and epoch milliseconds.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == "" || trimmed == `""` {
		t.Time = time.Time{}
		return nil
	}
	if !strings.HasPrefix(trimmed, "\"") {
		var millis int64
		if err := json.Unmarshal(data, &millis); err != nil {
			return fmt.Errorf("decode timestamp: %w", err)
		}
		t.Time = time.UnixMilli(millis).UTC()
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode timestamp: %w", err)
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("decode timestamp: unsupported format %q", raw)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.Time.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.UTC().Format(time.RFC3339Nano))
}

// UserRecord is the user shape returned by the auth and user endpoints.
type UserRecord struct {
	UserID        int64    `json:"userId"`
	Username      string   `json:"username"`
	Email         string   `json:"email,omitempty"`
	UserEmail     string   `json:"userEmail,omitempty"`
	UserProfile   *string  `json:"userProfile,omitempty"`
	Role          string   `json:"role,omitempty"`
	Roles         []string `json:"roles,omitempty"`
	ContactNumber Ref      `json:"contactNumber,omitempty"`
	Address       string   `json:"address,omitempty"`
	Bio           string   `json:"bio,omitempty"`
}

// EmailAddress returns whichever email field the endpoint populated.
func (u UserRecord) EmailAddress() string {
	if strings.TrimSpace(u.Email) != "" {
		return u.Email
	}
	return u.UserEmail
}

// PrimaryRole returns the single role, or the first entry of the role list.
func (u UserRecord) PrimaryRole() string {
	if strings.TrimSpace(u.Role) != "" {
		return u.Role
	}
	for _, role := range u.Roles {
		if strings.TrimSpace(role) != "" {
			return role
		}
	}
	return ""
}

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserUpdate is the profile payload accepted by PUT /user/update/{userId}.
// Nil fields keep the stored value.
type UserUpdate struct {
	Username      string  `json:"username"`
	UserEmail     string  `json:"userEmail"`
	ContactNumber *int64  `json:"contactNumber,omitempty"`
	Address       *string `json:"address,omitempty"`
	Bio           *string `json:"bio,omitempty"`
	UserProfile   *string `json:"userProfile,omitempty"`
}

type OrderLine struct {
	MenuID   int64 `json:"menuId"`
	Quantity int   `json:"quantity"`
}

type OrderRequest struct {
	UserID          int64               `json:"userId"`
	RestaurantID    int64               `json:"restaurantId"`
	OrderItemList   []OrderLine         `json:"orderItemList"`
	DeliveryAddress string              `json:"deliveryAddress"`
	ContactNumber   string              `json:"contactNumber"`
	PaymentStatus   enums.PaymentStatus `json:"paymentStatus"`
}

type OrderConfirmation struct {
	OrderNumber Ref `json:"orderNumber"`
}

type OrderItemHistory struct {
	MenuName    string          `json:"menuName"`
	MenuProfile *string         `json:"menuProfile,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
}

type OrderRecord struct {
	OrderID        Ref                `json:"orderId"`
	RestaurantName string             `json:"restaurantName"`
	OrderDate      *Timestamp         `json:"orderDate,omitempty"`
	DeliveryDate   *Timestamp         `json:"deliveryDate,omitempty"`
	OrderAddress   string             `json:"orderAddress"`
	OrderStatus    string             `json:"orderStatus"`
	ItemHistories  []OrderItemHistory `json:"itemHistories"`
}

type Restaurant struct {
	RestaurantID      int64           `json:"restaurantId"`
	RestaurantName    string          `json:"restaurantName"`
	RestaurantProfile *string         `json:"restaurantProfile,omitempty"`
	CuisineType       string          `json:"cuisineType,omitempty"`
	RestaurantAddress string          `json:"restaurantAddress,omitempty"`
	Rating            decimal.Decimal `json:"rating"`
	OpenOrClosed      bool            `json:"openOrClosed"`
}

type MenuItem struct {
	MenuID      int64           `json:"menuId"`
	MenuName    string          `json:"menuName"`
	MenuProfile *string         `json:"menuProfile,omitempty"`
	Description string          `json:"description,omitempty"`
	Rating      decimal.Decimal `json:"rating"`
	Price       decimal.Decimal `json:"price"`
}

// NewMenuItem is a menu entry submitted with a restaurant. MenuID is only set
// by spreadsheet imports that reference existing items.
type NewMenuItem struct {
	MenuID      *int64           `json:"menuId,omitempty"`
	MenuName    string           `json:"menuName"`
	MenuProfile string           `json:"menuProfile"`
	Rating      *decimal.Decimal `json:"rating"`
	Description string           `json:"description"`
	Price       decimal.Decimal  `json:"price"`
}

// NewRestaurant is the body of the create and bulk import endpoints.
type NewRestaurant struct {
	RestaurantID      *int64           `json:"restaurantId,omitempty"`
	RestaurantName    string           `json:"restaurantName"`
	RestaurantProfile string           `json:"restaurantProfile,omitempty"`
	CuisineType       string           `json:"cuisineType"`
	RestaurantAddress string           `json:"restaurantAddress"`
	Rating            *decimal.Decimal `json:"rating"`
	OpenOrClosed      bool             `json:"openOrClosed"`
	MenuList          []NewMenuItem    `json:"menuList"`
}

// Cookie is the persisted form of a backend session cookie.
type Cookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}
