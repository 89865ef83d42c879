package billing

import "time"

// The host billing platform owns these tables; the gateway only reads and
// appends. They are intentionally partial mappings, never migrated here.

type InvoiceModel struct {
	ID     uint    `gorm:"column:id;primaryKey"`
	UserID uint    `gorm:"column:userid"`
	Status string  `gorm:"column:status"`
	Total  float64 `gorm:"column:total"`
}

func (InvoiceModel) TableName() string { return "tblinvoices" }

type ClientModel struct {
	ID         uint   `gorm:"column:id;primaryKey"`
	FirstName  string `gorm:"column:firstname"`
	LastName   string `gorm:"column:lastname"`
	Email      string `gorm:"column:email"`
	CurrencyID uint   `gorm:"column:currency"`
}

func (ClientModel) TableName() string { return "tblclients" }

type CurrencyModel struct {
	ID   uint    `gorm:"column:id;primaryKey"`
	Code string  `gorm:"column:code"`
	Rate float64 `gorm:"column:rate"`
}

func (CurrencyModel) TableName() string { return "tblcurrencies" }

type AccountModel struct {
	ID          uint      `gorm:"column:id;primaryKey;autoIncrement"`
	UserID      uint      `gorm:"column:userid"`
	InvoiceID   uint      `gorm:"column:invoiceid"`
	TransID     string    `gorm:"column:transid"`
	Gateway     string    `gorm:"column:gateway"`
	Description string    `gorm:"column:description"`
	AmountIn    float64   `gorm:"column:amountin"`
	AmountOut   float64   `gorm:"column:amountout"`
	Fees        float64   `gorm:"column:fees"`
	Date        time.Time `gorm:"column:date"`
}

func (AccountModel) TableName() string { return "tblaccounts" }

type EmailTemplateModel struct {
	ID      uint   `gorm:"column:id;primaryKey"`
	Type    string `gorm:"column:type"`
	Name    string `gorm:"column:name"`
	Subject string `gorm:"column:subject"`
	Message string `gorm:"column:message"`
}

func (EmailTemplateModel) TableName() string { return "tblemailtemplates" }
