package httpcore

// canResponseHaveBody reports whether an entity is permitted on a response
// with the given status code, independent of what the ResponseProducer
// actually supplied. The ServiceHandler calls this at commit time and
// strips any entity the producer attached if it returns false.
//
// Ported from badu-http's bodyAllowedForStatus, extended with 205 per
// spec.md's HEAD/204/304/205 suppression list: any status below 200 (1xx),
// 204, 205 and 304 never carry a body; everything else may.
func canResponseHaveBody(status int) bool {
	switch {
	case status < 200:
		return false
	case status == 204, status == 205, status == 304:
		return false
	default:
		return true
	}
}
