package domain

type Client struct {
	ID    ID     `json:"id,omitempty"`
	Name  string `json:"name"`
	Email string `json:"email"`
	VIP   bool   `json:"vip"`
}

// FindClient returns the client with the given id from a cached list.
func FindClient(clients []Client, id ID) (Client, bool) {
	for _, c := range clients {
		if c.ID == id {
			return c, true
		}
	}
	return Client{}, false
}
