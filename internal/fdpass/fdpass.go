// Package fdpass hands a ring's shared-memory file descriptor to another
// process over a Unix domain socket, using an SCM_RIGHTS ancillary
// message, so a second process can Attach to the same mapping Endpoint.Handle
// exposes.
package fdpass

import (
	"fmt"
	"net"

	"golang.org/x/sys/unix"
)

// Send transmits fd as an SCM_RIGHTS ancillary message over conn, along
// with a single marker byte (Unix sockets require at least one byte of
// regular payload to carry ancillary data).
func Send(conn *net.UnixConn, fd int) error {
	rights := unix.UnixRights(fd)
	// sendmsg on the raw socket works for connected datagram sockets too,
	// which (*net.UnixConn).WriteMsgUnix refuses.
	raw, err := conn.SyscallConn()
	if err != nil {
		return fmt.Errorf("fdpass: send: %w", err)
	}
	var n int
	var serr error
	err = raw.Write(func(s uintptr) bool {
		n, serr = unix.SendmsgN(int(s), []byte{0}, rights, nil, 0)
		return serr != unix.EAGAIN
	})
	if err == nil {
		err = serr
	}
	if err != nil {
		return fmt.Errorf("fdpass: send: %w", err)
	}
	if n != 1 {
		return fmt.Errorf("fdpass: send: short write (n=%d)", n)
	}
	return nil
}

// Receive blocks for a single message on conn and extracts the first file
// descriptor carried in its ancillary data.
func Receive(conn *net.UnixConn) (int, error) {
	buf := make([]byte, 1)
	oob := make([]byte, unix.CmsgSpace(4))

	_, oobn, _, _, err := conn.ReadMsgUnix(buf, oob)
	if err != nil {
		return -1, fmt.Errorf("fdpass: receive: %w", err)
	}

	msgs, err := unix.ParseSocketControlMessage(oob[:oobn])
	if err != nil {
		return -1, fmt.Errorf("fdpass: parse control message: %w", err)
	}
	if len(msgs) == 0 {
		return -1, fmt.Errorf("fdpass: no control message received")
	}

	fds, err := unix.ParseUnixRights(&msgs[0])
	if err != nil {
		return -1, fmt.Errorf("fdpass: parse unix rights: %w", err)
	}
	if len(fds) == 0 {
		return -1, fmt.Errorf("fdpass: no file descriptor received")
	}

	return fds[0], nil
}
