package SDP

import (
	"encoding/base64"
	"strconv"
	"strings"

	"github.com/pion/sdp/v3"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	V_SDP = "video"
	A_SDP = "audio"
)

type SdpInfo struct {
	AVType      string
	Codec       string
	TimeScale   uint32
	Control     string
	PayloadType int
	SpsPps      [][]byte
}

// Summary is what the command logs about a DESCRIBE body. It is informational
// only; the body is written to disk whether or not it parses.
type Summary struct {
	Name    string
	Control string
	Medias  []*SdpInfo
}

func ParseSdp(data []byte) (Summary, error) {
	var sd sdp.SessionDescription
	if err := sd.Unmarshal(data); err != nil {
		return Summary{}, errors.Wrap(err, "parse sdp")
	}
	summary := Summary{Name: string(sd.SessionName)}
	summary.Control, _ = sessionAttribute(&sd, "control")
	for _, md := range sd.MediaDescriptions {
		info := &SdpInfo{AVType: md.MediaName.Media}
		info.Control, _ = md.Attribute("control")
		if len(md.MediaName.Formats) > 0 {
			info.PayloadType, _ = strconv.Atoi(md.MediaName.Formats[0])
		}
		if codec, err := sd.GetCodecForPayloadType(uint8(info.PayloadType)); err == nil {
			info.Codec = strings.ToLower(codec.Name)
			info.TimeScale = codec.ClockRate
			info.SpsPps = spropParameterSets(codec.Fmtp)
		}
		summary.Medias = append(summary.Medias, info)
	}
	if len(summary.Medias) == 0 {
		return summary, errors.New("not found media info")
	}
	return summary, nil
}

// Media returns the first media of the given type, nil if there is none.
func (s Summary) Media(avType string) *SdpInfo {
	for _, m := range s.Medias {
		if m.AVType == avType {
			return m
		}
	}
	return nil
}

func (s Summary) Fields() []zap.Field {
	fields := []zap.Field{
		zap.String("session", s.Name),
		zap.Int("medias", len(s.Medias)),
	}
	for i, m := range s.Medias {
		prefix := "media" + strconv.Itoa(i)
		fields = append(fields, zap.String(prefix, m.String()))
	}
	return fields
}

func (m *SdpInfo) String() string {
	var b strings.Builder
	b.WriteString(m.AVType)
	if m.Codec != "" {
		b.WriteString(" " + m.Codec + "/" + strconv.FormatUint(uint64(m.TimeScale), 10))
	}
	b.WriteString(" pt=" + strconv.Itoa(m.PayloadType))
	if m.Control != "" {
		b.WriteString(" control=" + m.Control)
	}
	return b.String()
}

func sessionAttribute(sd *sdp.SessionDescription, key string) (string, bool) {
	for _, a := range sd.Attributes {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

func spropParameterSets(fmtp string) [][]byte {
	var sets [][]byte
	for _, item := range strings.Split(fmtp, ";") {
		kv := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(kv) != 2 || kv[0] != "sprop-parameter-sets" {
			continue
		}
		for _, part := range strings.Split(kv[1], ",") {
			if raw, err := base64.StdEncoding.DecodeString(part); err == nil {
				sets = append(sets, raw)
			}
		}
	}
	return sets
}
