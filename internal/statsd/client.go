package statsd

import (
	"fmt"

	cactus "github.com/cactus/go-statsd-client/v5/statsd"
)

// Sink receives gauge samples.
type Sink interface {
	Gauge(name string, value Value) error
}

// Client sends each gauge as its own UDP datagram, "<name>:<value>|g".
// Buffering is off, so there is no batching, and delivery is never confirmed.
type Client struct {
	statter cactus.Statter
}

// Dial prepares the UDP socket used to reach the statsd server at addr
// (host:port). No packets are exchanged, so an absent server is not detected.
func Dial(addr string) (*Client, error) {
	statter, err := cactus.NewClientWithConfig(&cactus.ClientConfig{
		Address:     addr,
		UseBuffered: false,
	})
	if err != nil {
		return nil, fmt.Errorf("statsd: dial %s: %w", addr, err)
	}
	return &Client{statter: statter}, nil
}

// Gauge sends one gauge sample. An error means the datagram was not handed
// to the kernel.
func (c *Client) Gauge(name string, value Value) error {
	var err error
	if i, ok := value.Int64(); ok {
		err = c.statter.Gauge(name, i, 1.0)
	} else {
		// Unsigned counters past MaxInt64 and fractional values go out preformatted.
		err = c.statter.Raw(name, value.String()+"|g", 1.0)
	}
	if err != nil {
		return fmt.Errorf("statsd: send %s: %w", name, err)
	}
	return nil
}

// Close releases the socket.
func (c *Client) Close() error {
	return c.statter.Close()
}
