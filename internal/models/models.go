package models

import "time"

type User struct {
	ID           string    `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

type Group struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedBy string    `db:"created_by" json:"created_by"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

type GroupMember struct {
	GroupID  string    `db:"group_id" json:"group_id"`
	UserID   string    `db:"user_id" json:"user_id"`
	Role     string    `db:"role" json:"role"`
	JoinedAt time.Time `db:"joined_at" json:"joined_at"`
}

type Expense struct {
	ID          string    `db:"id" json:"id"`
	GroupID     string    `db:"group_id" json:"group_id"`
	PayerID     string    `db:"payer_id" json:"payer_id"`
	AmountMinor int64     `db:"amount_minor" json:"-"`
	Description string    `db:"description" json:"description"`
	Category    string    `db:"category" json:"category"`
	SpentAt     time.Time `db:"spent_at" json:"spent_at"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Split is one member's allocated share of one expense. The paid flag is
// bookkeeping only: it is set for the payer at creation and is never read by
// the balance computation, which counts confirmed payments instead.
type Split struct {
	ExpenseID   string     `db:"expense_id" json:"expense_id"`
	UserID      string     `db:"user_id" json:"user_id"`
	AmountMinor int64      `db:"amount_minor" json:"-"`
	Paid        bool       `db:"paid" json:"paid"`
	PaidAt      *time.Time `db:"paid_at" json:"paid_at,omitempty"`
}

type ExpenseWithSplits struct {
	Expense
	Splits []Split `json:"splits"`
}

// Payment statuses. Confirmed and rejected are terminal. Completed is a
// legacy status that already counts toward balances but may still be
// confirmed or rejected; new payments always start pending.
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentConfirmed = "confirmed"
	PaymentRejected  = "rejected"
)

type Payment struct {
	ID          string     `db:"id" json:"id"`
	GroupID     string     `db:"group_id" json:"group_id"`
	FromUserID  string     `db:"from_user" json:"from_user_id"`
	ToUserID    string     `db:"to_user" json:"to_user_id"`
	AmountMinor int64      `db:"amount_minor" json:"-"`
	Status      string     `db:"status" json:"status"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	ConfirmedAt *time.Time `db:"confirmed_at" json:"confirmed_at,omitempty"`
}

// Counted reports whether the payment contributes to balance math.
func (p Payment) Counted() bool {
	return p.Status == PaymentCompleted || p.Status == PaymentConfirmed
}

// Confirmable reports whether the payment is still awaiting the recipient's
// decision.
func (p Payment) Confirmable() bool {
	return p.Status == PaymentPending || p.Status == PaymentCompleted
}

// Balance is a member's derived net position. Positive means the group owes
// the member, negative means the member owes the group. Never persisted;
// recomputed from expenses, splits and counted payments on every query.
type Balance struct {
	UserID        string `json:"user_id"`
	PaidMinor     int64  `json:"-"`
	ShareMinor    int64  `json:"-"`
	SentMinor     int64  `json:"-"`
	ReceivedMinor int64  `json:"-"`
	NetMinor      int64  `json:"-"`
}

// DebtLine is a suggested transfer from a debtor to a creditor. Advisory
// only; it becomes real state only when a member initiates a payment.
type DebtLine struct {
	FromUserID  string `json:"from_user_id"`
	ToUserID    string `json:"to_user_id"`
	AmountMinor int64  `json:"-"`
}
