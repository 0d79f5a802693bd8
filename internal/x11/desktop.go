package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
)

// ActivateWindow sends _NET_ACTIVE_WINDOW for a window. EWMH window managers
// deiconify a minimized window before raising and focusing it.
// The send is checked, so a rejected request surfaces as an error.
func (c *Connection) ActivateWindow(windowID xproto.Window) error {
	atomReply, err := xproto.InternAtom(c.XUtil.Conn(), false,
		uint16(len("_NET_ACTIVE_WINDOW")), "_NET_ACTIVE_WINDOW").Reply()
	if err != nil {
		return fmt.Errorf("failed to intern _NET_ACTIVE_WINDOW: %w", err)
	}

	const sourceIndication = 2 // pager/direct action
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: windowID,
		Type:   atomReply.Atom,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{sourceIndication, 0, 0, 0, 0}),
	}

	return xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		c.Root,
		xproto.EventMaskSubstructureRedirect|xproto.EventMaskSubstructureNotify,
		string(ev.Bytes()),
	).Check()
}

// RestoreWindow brings an iconic window back to the normal state: it is
// mapped again and activated so the window manager drops the hidden state.
func (c *Connection) RestoreWindow(windowID xproto.Window) error {
	if err := xproto.MapWindowChecked(c.XUtil.Conn(), windowID).Check(); err != nil {
		return fmt.Errorf("failed to map window 0x%x: %w", windowID, err)
	}
	return c.ActivateWindow(windowID)
}
