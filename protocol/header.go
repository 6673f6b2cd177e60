package protocol

import "fmt"

// CMsgProtoBufHeader is prepended to every protobuf-framed CM message. It
// carries routing and RPC-correlation metadata alongside the session
// identity needed once a client is logged on.
type CMsgProtoBufHeader struct {
	Steamid         *uint64 `protobuf:"varint,1,opt,name=steamid"`
	ClientSessionid *int32  `protobuf:"varint,2,opt,name=client_sessionid"`
	JobidSource     *uint64 `protobuf:"fixed64,10,opt,name=jobid_source"`
	JobidTarget     *uint64 `protobuf:"fixed64,11,opt,name=jobid_target"`
	TargetJobName   *string `protobuf:"bytes,12,opt,name=target_job_name"`
	Eresult         *int32  `protobuf:"varint,13,opt,name=eresult"`
	ErrorMessage    *string `protobuf:"bytes,14,opt,name=error_message"`
}

func (m *CMsgProtoBufHeader) Reset()         { *m = CMsgProtoBufHeader{} }
func (m *CMsgProtoBufHeader) String() string { return fmt.Sprintf("%+v", *m) }
func (m *CMsgProtoBufHeader) ProtoMessage()  {}

func (m *CMsgProtoBufHeader) GetSteamid() uint64 {
	if m != nil && m.Steamid != nil {
		return *m.Steamid
	}
	return 0
}

func (m *CMsgProtoBufHeader) GetClientSessionid() int32 {
	if m != nil && m.ClientSessionid != nil {
		return *m.ClientSessionid
	}
	return 0
}

func (m *CMsgProtoBufHeader) GetJobidSource() uint64 {
	if m != nil && m.JobidSource != nil {
		return *m.JobidSource
	}
	return 0
}

func (m *CMsgProtoBufHeader) GetJobidTarget() uint64 {
	if m != nil && m.JobidTarget != nil {
		return *m.JobidTarget
	}
	return 0
}

func (m *CMsgProtoBufHeader) GetTargetJobName() string {
	if m != nil && m.TargetJobName != nil {
		return *m.TargetJobName
	}
	return ""
}

func (m *CMsgProtoBufHeader) GetEresult() int32 {
	if m != nil && m.Eresult != nil {
		return *m.Eresult
	}
	return 0
}

func (m *CMsgProtoBufHeader) GetErrorMessage() string {
	if m != nil && m.ErrorMessage != nil {
		return *m.ErrorMessage
	}
	return ""
}

// CMsgMulti wraps a batch of framed sub-messages, optionally gzip-compressed
// when the uncompressed size exceeds the server's threshold.
type CMsgMulti struct {
	SizeUnzipped *uint32 `protobuf:"varint,1,opt,name=size_unzipped"`
	MessageBody  []byte  `protobuf:"bytes,2,opt,name=message_body"`
}

func (m *CMsgMulti) Reset()         { *m = CMsgMulti{} }
func (m *CMsgMulti) String() string { return fmt.Sprintf("%+v", *m) }
func (m *CMsgMulti) ProtoMessage()  {}

func (m *CMsgMulti) GetSizeUnzipped() uint32 {
	if m != nil && m.SizeUnzipped != nil {
		return *m.SizeUnzipped
	}
	return 0
}

func (m *CMsgMulti) GetMessageBody() []byte {
	if m != nil {
		return m.MessageBody
	}
	return nil
}
