package dto

type AppointmentListDTO struct {
	ID            string `json:"id"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	DurationMin   int    `json:"duration_min"`
	Status        string `json:"status"`
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
	BarberName    string `json:"barber_name"`
	ServiceName   string `json:"service_name"`
}
