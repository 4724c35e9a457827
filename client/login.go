package client

import "strconv"

// loginPacketID is the fixed sub-identifier embedded in every login payload,
// grounded on the host driver's LOGIN_PACKET_ID constant.
const loginPacketID uint32 = 0x7b

// credential131 is the manufacturer-code-131 login credential (spec §6.5's
// "codes 100..140"): a fixed 20-byte string the controller compares against
// before granting a session.
var credential131 = [20]byte{
	0x31, 0x33, 0x31, 0x20, 0x66, 0x6b, 0x59, 0x75, 0x29, 0x29,
	0x31, 0x32, 0x32, 0x32, 0x31, 0x51, 0x51, 0x61, 0x61, 0x00,
}

// credentials maps a manufacturer login code to its fixed credential bytes.
// Only code 131 is grounded in observed wire behavior; other codes in the
// 100..140 range (spec §6.5) are not populated, and attempting to log in
// with one returns an error rather than guessing a credential.
var credentials = map[byte][20]byte{
	131: credential131,
}

// buildLoginPayload assembles the login packet body: the manufacturer
// credential, a 2-byte 0xFF/0xFF marker, the login packet id as 4 big-endian
// bytes, and a fixed 6-byte trailer (spec §6.5; layout grounded on the host
// driver's create_login_packet_data).
func buildLoginPayload(loginCode byte) ([]byte, error) {
	cred, ok := credentials[loginCode]
	if !ok {
		return nil, newErr("login", KindProtocol, errUnknownLoginCode(loginCode))
	}
	out := make([]byte, 0, 32)
	out = append(out, cred[:]...)
	out = append(out, 0xff, 0xff)
	out = append(out,
		byte(loginPacketID>>24), byte(loginPacketID>>16),
		byte(loginPacketID>>8), byte(loginPacketID))
	out = append(out, 5, 0, 0, 0, 0, 0)
	return out, nil
}

type errUnknownLoginCode byte

func (e errUnknownLoginCode) Error() string {
	return "client: no known credential for login code " + strconv.Itoa(int(e))
}
