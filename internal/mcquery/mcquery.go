// Package mcquery реализует клиента статусного UDP-протокола игрового
// сервера (GameSpy4 query): handshake за challenge-токеном и full stat,
// из которого извлекается список имен игроков онлайн.
package mcquery

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"net"
	"strconv"
	"sync/atomic"
	"time"
)

const (
	typeHandshake = 0x09
	typeStat      = 0x00

	defaultTimeout = 2 * time.Second
	maxPacket      = 8192
)

// Секции ответа full stat разделены фиксированными байтовыми вставками.
var (
	statPreamble  = []byte("splitnum\x00\x80\x00")
	playerSection = []byte("\x01player_\x00\x00")
)

type Client struct {
	addr    string
	timeout time.Duration
	session atomic.Uint32
}

func NewClient(addr string) *Client {
	return &Client{
		addr:    addr,
		timeout: defaultTimeout,
	}
}

// Players запрашивает у сервера текущий список игроков. Каждый вызов -
// независимая пара запросов handshake + full stat на свежем сокете.
func (c *Client) Players(ctx context.Context) ([]string, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "udp", c.addr)
	if err != nil {
		return nil, fmt.Errorf("dialing query port failed: %w", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(c.timeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
		deadline = dl
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return nil, fmt.Errorf("setting query deadline failed: %w", err)
	}

	// У session id значим только младший ниббл каждого байта
	session := c.session.Add(1) & 0x0F0F0F0F

	token, err := handshake(conn, session)
	if err != nil {
		return nil, err
	}

	return fullStat(conn, session, token)
}

// handshake получает challenge-токен, обязательный для stat-запросов.
func handshake(conn net.Conn, session uint32) (int32, error) {
	req := make([]byte, 0, 7)
	req = append(req, 0xFE, 0xFD, typeHandshake)
	req = binary.BigEndian.AppendUint32(req, session)

	if _, err := conn.Write(req); err != nil {
		return 0, fmt.Errorf("sending handshake failed: %w", err)
	}

	resp := make([]byte, 64)
	n, err := conn.Read(resp)
	if err != nil {
		return 0, fmt.Errorf("reading handshake response failed: %w", err)
	}
	if n < 6 || resp[0] != typeHandshake {
		return 0, fmt.Errorf("malformed handshake response (%d bytes)", n)
	}
	if binary.BigEndian.Uint32(resp[1:5]) != session {
		return 0, fmt.Errorf("handshake session mismatch")
	}

	tokenStr, _, err := readCString(resp[5:n], 0)
	if err != nil {
		return 0, fmt.Errorf("handshake token not terminated")
	}
	token, err := strconv.ParseInt(tokenStr, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("parsing challenge token failed: %w", err)
	}
	return int32(token), nil
}

// fullStat запрашивает расширенный статус и разбирает секцию игроков.
func fullStat(conn net.Conn, session uint32, token int32) ([]string, error) {
	req := make([]byte, 0, 15)
	req = append(req, 0xFE, 0xFD, typeStat)
	req = binary.BigEndian.AppendUint32(req, session)
	req = binary.BigEndian.AppendUint32(req, uint32(token))
	// Четыре байта набивки отличают full stat от basic stat
	req = append(req, 0x00, 0x00, 0x00, 0x00)

	if _, err := conn.Write(req); err != nil {
		return nil, fmt.Errorf("sending stat request failed: %w", err)
	}

	resp := make([]byte, maxPacket)
	n, err := conn.Read(resp)
	if err != nil {
		return nil, fmt.Errorf("reading stat response failed: %w", err)
	}
	if n < 5 || resp[0] != typeStat {
		return nil, fmt.Errorf("malformed stat response (%d bytes)", n)
	}
	if binary.BigEndian.Uint32(resp[1:5]) != session {
		return nil, fmt.Errorf("stat session mismatch")
	}

	payload := resp[5:n]
	if !bytes.HasPrefix(payload, statPreamble) {
		return nil, fmt.Errorf("unexpected stat preamble")
	}
	pos := len(statPreamble)

	// Пары ключ-значение до пустого ключа; сами значения здесь не нужны
	for {
		key, next, err := readCString(payload, pos)
		if err != nil {
			return nil, fmt.Errorf("truncated stat key section")
		}
		pos = next
		if key == "" {
			break
		}
		_, next, err = readCString(payload, pos)
		if err != nil {
			return nil, fmt.Errorf("truncated stat value section")
		}
		pos = next
	}

	if !bytes.HasPrefix(payload[pos:], playerSection) {
		return nil, fmt.Errorf("player section marker missing")
	}
	pos += len(playerSection)

	var players []string
	for {
		name, next, err := readCString(payload, pos)
		if err != nil {
			return nil, fmt.Errorf("truncated player section")
		}
		pos = next
		if name == "" {
			break
		}
		players = append(players, name)
	}

	return players, nil
}

// readCString читает null-терминированную строку начиная с pos и
// возвращает позицию за терминатором.
func readCString(data []byte, pos int) (string, int, error) {
	if pos >= len(data) {
		return "", 0, fmt.Errorf("offset beyond packet")
	}
	end := bytes.IndexByte(data[pos:], 0x00)
	if end < 0 {
		return "", 0, fmt.Errorf("unterminated string")
	}
	return string(data[pos : pos+end]), pos + end + 1, nil
}
