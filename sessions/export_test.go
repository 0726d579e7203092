package sessions

import "time"

func (s *Store) RenewalPeriod() time.Duration {
	return s.renewalPeriod()
}
