package rpcclient

import "encoding/json"

// Hub methods, mapped verbatim per spec §4.8.

func (c *Client) ProgramExecute(slot int) (json.RawMessage, error) {
	return c.SendMessage("program_execute", map[string]any{"slotid": slot})
}

func (c *Client) ProgramTerminate() (json.RawMessage, error) {
	return c.SendMessage("program_terminate", nil)
}

func (c *Client) GetStorageStatus() (json.RawMessage, error) {
	return c.SendMessage("get_storage_status", nil)
}

func (c *Client) GetHubInfo() (json.RawMessage, error) {
	return c.SendMessage("get_hub_info", nil)
}

func (c *Client) MoveProject(fromSlot, toSlot int) (json.RawMessage, error) {
	return c.SendMessage("move_project", map[string]any{"old_slotid": fromSlot, "new_slotid": toSlot})
}

func (c *Client) RemoveProject(slot int) (json.RawMessage, error) {
	return c.SendMessage("remove_project", map[string]any{"slotid": slot})
}

func (c *Client) DisplaySetPixel(x, y, brightness int) (json.RawMessage, error) {
	return c.SendMessage("scratch.display_set_pixel", map[string]any{"x": x, "y": y, "brightness": brightness})
}

func (c *Client) DisplayClear() (json.RawMessage, error) {
	return c.SendMessage("scratch.display_clear", nil)
}

// DisplayImage shows a still image, format "xxxxx:xxxxx:xxxxx:xxxxx:xxxxx"
// where each x is a brightness digit 0-9, per spec §6.
func (c *Client) DisplayImage(image string) (json.RawMessage, error) {
	return c.SendMessage("scratch.display_image", map[string]any{"image": image})
}

func (c *Client) DisplayText(text string) (json.RawMessage, error) {
	return c.SendMessage("scratch.display_text", map[string]any{"text": text})
}

func (c *Client) startWriteProgram(name string, size, slot int, createdMs, modifiedMs int64) (json.RawMessage, error) {
	meta := map[string]any{
		"created":    createdMs,
		"modified":   modifiedMs,
		"name":       name,
		"type":       "python",
		"project_id": "50uN1ZaRpHj2",
	}
	return c.SendMessage("start_write_program", map[string]any{"slotid": slot, "size": size, "meta": meta})
}

func (c *Client) writePackage(dataB64, transferID string) (json.RawMessage, error) {
	return c.SendMessage("write_package", map[string]any{"data": dataB64, "transferid": transferID})
}
