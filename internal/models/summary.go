package models

// GroupSummary is one dashboard row: totals for the tickets sharing a
// (seq, type, category, admit) group.
type GroupSummary struct {
	Seq             int    `json:"seq"`
	Type            string `json:"type"`
	Category        string `json:"category"`
	Admit           int    `json:"admit"`
	TotalTickets    int    `json:"total_tickets"`
	TicketsSold     int    `json:"tickets_sold"`
	TotalSeats      int    `json:"total_seats"`
	SeatsSold       int    `json:"seats_sold"`
	TotalVisitors   int    `json:"total_visitors"`
	BalanceTickets  int    `json:"balance_tickets"`
	BalanceSeats    int    `json:"balance_seats"`
	BalanceVisitors int    `json:"balance_visitors"`
}

// GrandTotal sums every numeric column across groups. Rendered with the
// "Total" sentinel in place of a sequence number.
type GrandTotal struct {
	Admit           int `json:"admit"`
	TotalTickets    int `json:"total_tickets"`
	TicketsSold     int `json:"tickets_sold"`
	TotalSeats      int `json:"total_seats"`
	SeatsSold       int `json:"seats_sold"`
	TotalVisitors   int `json:"total_visitors"`
	BalanceTickets  int `json:"balance_tickets"`
	BalanceSeats    int `json:"balance_seats"`
	BalanceVisitors int `json:"balance_visitors"`
}
