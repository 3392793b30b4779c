package RTSP

import (
	"bufio"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadResponse(t *testing.T) {
	data := "RTSP/1.0 401 Unauthorized\r\n" +
		"CSeq: 2\r\n" +
		"Www-Authenticate: Digest realm=\"Inphase Media Server\", nonce=\"249c0a7ed\", algorithm=\"MD5\"\r\n" +
		"\r\n"
	resp, err := ReadResponse(bufio.NewReader(strings.NewReader(data)))
	require.NoError(t, err)
	require.Equal(t, 401, resp.StatusCode)
	require.Equal(t, "Unauthorized", resp.Status)
	require.Equal(t, "2", resp.Header[CSeq])
	require.Contains(t, resp.Header[WWW_Authenticate], "Inphase Media Server")
	require.Equal(t, data, string(resp.RawHeader))
	require.False(t, resp.IsSuccess())
}

func TestReadResponseBody(t *testing.T) {
	body := "v=0\r\no=- 0 0 IN IP4 127.0.0.1\r\ns=Media Presentation\r\n"
	data := "RTSP/1.0 200 OK\r\nCSeq: 2\r\nContent-Type: application/sdp\r\nContent-Length: " +
		strconv.Itoa(len(body)) + "\r\n\r\n" + body + "RTSP/1.0 200 OK\r\nCSeq: 3\r\n\r\n"
	rd := bufio.NewReader(strings.NewReader(data))

	resp, err := ReadResponse(rd)
	require.NoError(t, err)
	require.Equal(t, body, resp.Body)
	require.True(t, resp.IsSuccess())

	next, err := ReadResponse(rd)
	require.NoError(t, err)
	require.Equal(t, "3", next.Header[CSeq])
}

func TestReadResponseShortBody(t *testing.T) {
	data := "RTSP/1.0 200 OK\r\nCSeq: 2\r\nContent-Length: 100\r\n\r\nv=0\r\n"
	_, err := ReadResponse(bufio.NewReader(strings.NewReader(data)))
	require.Error(t, err)
}

func TestReadResponseMalformed(t *testing.T) {
	for _, data := range []string{
		"HTTP/1.1 200 OK\r\n\r\n",
		"RTSP/1.0 abc OK\r\n\r\n",
		"RTSP/1.0 200 OK\r\nno colon here\r\n\r\n",
		"RTSP/1.0 200 OK\r\nContent-Length: -1\r\n\r\n",
	} {
		_, err := ReadResponse(bufio.NewReader(strings.NewReader(data)))
		require.Error(t, err, data)
	}
}

func TestResponseSession(t *testing.T) {
	resp := GenerateResponse(200, "OK", map[string]string{SessionID: "12345678;timeout=60"}, "")
	require.Equal(t, "12345678", resp.Session())

	resp = GenerateResponse(200, "OK", map[string]string{}, "")
	require.Equal(t, "", resp.Session())
	require.False(t, resp.CloseRequested())

	resp = GenerateResponse(200, "OK", map[string]string{Connection: "Close"}, "")
	require.True(t, resp.CloseRequested())
}
