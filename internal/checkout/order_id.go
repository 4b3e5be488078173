package checkout

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

var orderNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("pharmabot.orders"))

// OrderID derives the order reference from the customer and checkout instant:
// PREFIX-YYYYMMDDHHMMSS-xxxxxxxx. The suffix hashes the nanosecond timestamp
// so two checkouts inside the same second still differ.
func OrderID(prefix, customerID string, at time.Time) string {
	name := customerID + "|" + strconv.FormatInt(at.UnixNano(), 10)
	suffix := strings.ReplaceAll(uuid.NewSHA1(orderNamespace, []byte(name)).String(), "-", "")[:8]
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if prefix == "" {
		return fmt.Sprintf("%s-%s", at.Format("20060102150405"), suffix)
	}
	return fmt.Sprintf("%s-%s-%s", prefix, at.Format("20060102150405"), suffix)
}
