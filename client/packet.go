package client

// Packet types (spec §6.2): the subset an implementer must support. Reply
// codes pair with their request by odd/even adjacency except where noted.
const (
	ReqData           uint16 = 0x0C28
	ReplyData         uint16 = 0x0C29
	ReqMultipleData   uint16 = 0x0C2A
	ReplyMultipleData uint16 = 0x0C2B
	ReqWriteData      uint16 = 0x0C2C
	ReplyWriteData    uint16 = 0x0C2D
	ReqSerialNo       uint16 = 0x0C2E
	ReplySerialNo     uint16 = 0x0C2F

	RemoteLogin  uint16 = 0x138E
	RemoteLogout uint16 = 0x138F
	NotLoggedIn  uint16 = 0x1390

	// Alarm data request/reply, four N:4 page pairs (spec §6.2). Only the
	// first pair is exercised by this client: original_source never
	// implements alarm fetching, so the 2nd..4th page pairs have no
	// observed wire behavior to ground a paging scheme on. AlarmDataReq1
	// instead carries one alarm's sub_id in its payload and its reply holds
	// that alarm's description (see alarm.go), a single-pair simplification
	// documented in DESIGN.md.
	AlarmDataReq1   uint16 = 0x0BFB
	AlarmDataReply1 uint16 = 0x0BFC
	AlarmDataReq2   uint16 = 0x0BFD
	AlarmDataReply2 uint16 = 0x0BFE
	AlarmDataReq3   uint16 = 0x0BFF
	AlarmDataReply3 uint16 = 0x0C00
	AlarmDataReq4   uint16 = 0x0C01
	AlarmDataReply4 uint16 = 0x0C02

	AcknowledgeAlarm  uint16 = 0x0BEA
	RequestAlarmCode  uint16 = 0x0BEB
	ReplyAlarmCode    uint16 = 0x0BEC
)
