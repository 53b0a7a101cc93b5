package location

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/tarm/serial"
)

// SerialPort is responsible for reading NMEA output from a GPS receiver connected via serial port.
type SerialPort struct {
	port        string        // Serial port to which the GPS device is connected
	baudRate    int           // Baud rate for the serial communication
	readTimeout time.Duration // Zero blocks until data arrives
}

// NewSerialPort creates a new instance of SerialPort with the specified port and baud rate.
func NewSerialPort(port string, baudRate int, readTimeout time.Duration) *SerialPort {
	return &SerialPort{
		port:        port,
		baudRate:    baudRate,
		readTimeout: readTimeout,
	}
}

// Open opens the serial port. Closing the returned stream unblocks pending reads.
func (p *SerialPort) Open() (io.ReadCloser, error) {
	if p.port == "" {
		return nil, errors.New("serial port is empty")
	}
	return serial.OpenPort(&serial.Config{
		Name:        p.port,
		Baud:        p.baudRate,
		ReadTimeout: p.readTimeout,
	})
}

// ScanFixes reads NMEA lines from src and calls fn with every line that carries a
// position fix. Lines without a fix or of other sentence types are skipped.
// It returns when src is exhausted, fn returns false, or a read fails.
// A port opened with a read timeout reports an idle receiver as end of stream;
// callers scan again to keep reading.
func ScanFixes(src io.Reader, fn func(line string, fix Location) bool) error {
	scanner := bufio.NewScanner(src)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "$") {
			continue
		}

		fix, err := ParseSentence(line)
		if err != nil {
			continue
		}
		if !fn(line, fix) {
			return nil
		}
	}

	return scanner.Err()
}
