package cache

import "testing"

func TestParseUsedMemory(t *testing.T) {
	info := "# Memory\r\nused_memory:1048576\r\nused_memory_human:1.00M\r\n"
	if got := parseUsedMemory(info); got != 1048576 {
		t.Fatalf("parseUsedMemory = %d, want 1048576", got)
	}

	if got := parseUsedMemory("# Memory\r\nmaxmemory:0\r\n"); got != 0 {
		t.Fatalf("parseUsedMemory without used_memory = %d, want 0", got)
	}
}
