// Package recfile reads and writes REC1 files: a small header followed by a
// payload of fixed-width records.
//
// Files are opened with a read-only memory mapping, so building a
// [recview.View] over a file does not read or copy the payload. Records are
// decoded on access through [Layout], whose element size comes from the
// file's [Header].
//
// # Basic Usage
//
//	b, _ := recfile.NewBuilder(recfile.KindU32, recview.BigEndian, 0)
//	_ = b.AppendUint(4)
//	_ = b.AppendUint(5)
//	_ = b.WriteFile("/tmp/nums.rec")
//
//	f, err := recfile.Open("/tmp/nums.rec")
//	if err != nil {
//	    // errors.Is(err, recfile.ErrCorrupt) / ErrIncompatible
//	}
//	defer f.Close()
//
//	view, err := f.View()
//	v, found, err := view.Get(1) // v.Uint() == 5
//
// # Format
//
// All header integers are little-endian; the record byte order is a header
// field. The header is 64 bytes:
//
//	0x00  magic "REC1"
//	0x04  version          uint32
//	0x08  header size      uint32
//	0x0C  kind             uint32
//	0x10  byte order       uint32 (0 little, 1 big)
//	0x14  element size     uint32
//	0x18  count            uint64
//	0x20  payload CRC32-C  uint32
//	0x24  header CRC32-C   uint32 (computed with this field zeroed)
//	0x28  reserved, must be zero
//
// The payload starts at 0x40.
package recfile
