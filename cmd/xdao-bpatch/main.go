package main

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/cloudflare/circl/sign/dilithium/mode3"
	"github.com/ipfs/go-cid"

	"xdao.co/bpatch/bpatch"
	"xdao.co/bpatch/checksum"
	"xdao.co/bpatch/internal/fsio"
	"xdao.co/bpatch/internal/ui"
	"xdao.co/bpatch/preview"
	"xdao.co/bpatch/sign"
	"xdao.co/bpatch/store"
)

// maxPreviewRegions bounds how many change regions the verbose apply
// report renders in detail.
const maxPreviewRegions = 5

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printUsage(errOut)
		return 2
	}

	switch args[0] {
	case "generate":
		return cmdGenerate(args[1:], out, errOut)
	case "apply":
		return cmdApply(args[1:], out, errOut)
	case "inspect":
		return cmdInspect(args[1:], out, errOut)
	case "sign":
		return cmdSign(args[1:], out, errOut)
	case "verify-sig":
		return cmdVerifySig(args[1:], out, errOut)
	case "store":
		return cmdStore(args[1:], out, errOut)
	case "help", "-h", "--help":
		printUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown command: %s\n\n", args[0])
		printUsage(errOut)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "xdao-bpatch: binary delta patch toolkit")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  xdao-bpatch generate [-o <out>] [--checksum] [-r] [--meta <text>] [--hash <alg>] [-f] [-v|-q] <base> <target>")
	fmt.Fprintln(w, "  xdao-bpatch apply [-o <out>] [--verify] [--dry-run] [-R] [--hash <alg>] [-f] [-v|-q] <base> <patch>")
	fmt.Fprintln(w, "  xdao-bpatch inspect [-v] <patch>")
	fmt.Fprintln(w, "  xdao-bpatch sign (--seed-hex <64hex> | --alg dilithium3 --key-file <path>) [--sign-hash <alg>] [-o <out.sig>] <patch>")
	fmt.Fprintln(w, "  xdao-bpatch verify-sig --sig <file> --pub <base64> <patch>")
	fmt.Fprintln(w, "  xdao-bpatch store put --dir <root> <patch>")
	fmt.Fprintln(w, "  xdao-bpatch store get --dir <root> -o <out> <id>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - --hash selects the digest algorithm (sha256, sha3-256, blake3);")
	fmt.Fprintln(w, "    generation and application must agree on it")
	fmt.Fprintln(w, "  - --seed-hex must be a 32-byte (64 hex chars) ed25519 seed")
	fmt.Fprintln(w, "  - store addresses patches by CIDv1 (raw, sha2-256)")
	fmt.Fprintln(w, "  - apply --dry-run verifies and reports but writes nothing")
}

func cmdGenerate(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	fs.SetOutput(errOut)
	output := fs.String("o", "", "output patch path (default <base>.patch)")
	withChecksum := fs.Bool("checksum", false, "embed base/output digests")
	withReverse := fs.Bool("r", false, "embed a reverse delta (bidirectional patch)")
	meta := fs.String("meta", "", "free-form metadata to embed")
	hashAlg := fs.String("hash", string(checksum.Default), "digest algorithm")
	force := fs.Bool("f", false, "overwrite the output file if it exists")
	verbose := fs.Bool("v", false, "verbose output")
	quiet := fs.Bool("q", false, "suppress all output except errors")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 2 {
		fmt.Fprintln(errOut, "usage: xdao-bpatch generate [flags] <base> <target>")
		return 2
	}
	basePath, targetPath := fs.Arg(0), fs.Arg(1)

	p := ui.NewPrinter(ui.LevelFromFlags(*verbose, *quiet), errOut)

	sum, err := checksum.New(checksum.Algorithm(*hashAlg))
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}

	for _, path := range []string{basePath, targetPath} {
		if err := fsio.Exists(path); err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
	}

	base, err := readInput(basePath, p, errOut)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	target, err := readInput(targetPath, p, errOut)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}

	p.Status("generating patch %s → %s", basePath, targetPath)
	if *withReverse {
		p.Status("generating reverse patch %s → %s", targetPath, basePath)
	}
	res, err := bpatch.Generate(base, target, bpatch.GenerateOptions{
		EmbedChecksums: *withChecksum,
		EmbedReverse:   *withReverse,
		Metadata:       *meta,
		Hash:           sum,
	})
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}

	outPath := *output
	if outPath == "" {
		outPath = basePath + ".patch"
	}
	if err := fsio.WriteFile(outPath, res.Encoded, *force); err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}

	reduction := ui.Reduction(uint64(len(target)), uint64(len(res.Encoded)))
	switch p.Level() {
	case ui.Quiet:
	case ui.Normal:
		note := ""
		if *withReverse {
			note = " (bidirectional)"
		}
		fmt.Fprintf(out, "%s wrote %s to %s%s %s\n",
			ui.Ok(), ui.Bytes(uint64(len(res.Encoded))), ui.Path(outPath), note, reduction)
	case ui.Verbose:
		fmt.Fprintf(out, "%s generated patch\n", ui.Ok())
		fmt.Fprintf(out, "   %s target size: %s\n", ui.Info(), ui.Bytes(uint64(len(target))))
		fmt.Fprintf(out, "   %s patch size:  %s %s\n", ui.Info(), ui.Bytes(uint64(len(res.Encoded))), reduction)
		fmt.Fprintf(out, "   %s saved to:    %s\n", ui.Info(), ui.Path(outPath))
		fmt.Fprintf(out, "   %s checksums:   %v\n", ui.Info(), *withChecksum)
		fmt.Fprintf(out, "   %s reverse:     %v\n", ui.Info(), *withReverse)
		if *meta != "" {
			fmt.Fprintf(out, "   %s metadata:    %q\n", ui.Info(), *meta)
		}
	}
	return 0
}

func cmdApply(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("apply", flag.ContinueOnError)
	fs.SetOutput(errOut)
	output := fs.String("o", "", "output path (default <base>.patched)")
	verify := fs.Bool("verify", false, "verify digests when present")
	dryRun := fs.Bool("dry-run", false, "verify the patch applies without writing output")
	reverse := fs.Bool("R", false, "apply the reverse delta")
	hashAlg := fs.String("hash", string(checksum.Default), "digest algorithm")
	force := fs.Bool("f", false, "overwrite the output file if it exists")
	verbose := fs.Bool("v", false, "verbose output")
	quiet := fs.Bool("q", false, "suppress all output except errors")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 2 {
		fmt.Fprintln(errOut, "usage: xdao-bpatch apply [flags] <base> <patch>")
		return 2
	}
	basePath, patchPath := fs.Arg(0), fs.Arg(1)

	p := ui.NewPrinter(ui.LevelFromFlags(*verbose, *quiet), errOut)

	sum, err := checksum.New(checksum.Algorithm(*hashAlg))
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}

	for _, path := range []string{basePath, patchPath} {
		if err := fsio.Exists(path); err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
	}

	base, err := readInput(basePath, p, errOut)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	patchFile, err := readInput(patchPath, p, errOut)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}

	verb := "applying patch to"
	if *dryRun {
		verb = "verifying patch for"
	}
	dir := ""
	if *reverse {
		dir = " (reverse)"
	}
	p.Status("%s %s%s", verb, basePath, dir)

	res, err := bpatch.Apply(base, patchFile, bpatch.ApplyOptions{
		Reverse: *reverse,
		Verify:  *verify,
		Preview: p.Level() == ui.Verbose,
		Hash:    sum,
	})
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}

	outPath := ""
	if !*dryRun {
		outPath = *output
		if outPath == "" {
			outPath = basePath + ".patched"
		}
		if err := fsio.WriteFile(outPath, res.Output, *force); err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
	}

	switch p.Level() {
	case ui.Quiet:
	case ui.Normal:
		if *dryRun {
			fmt.Fprintf(out, "%s patch verified, %s output\n", ui.Ok(), ui.Bytes(uint64(len(res.Output))))
		} else {
			fmt.Fprintf(out, "%s wrote %s to %s\n", ui.Ok(), ui.Bytes(uint64(len(res.Output))), ui.Path(outPath))
		}
	case ui.Verbose:
		if *dryRun {
			fmt.Fprintf(out, "%s dry run successful\n", ui.Ok())
		} else {
			fmt.Fprintf(out, "%s applied patch\n", ui.Ok())
		}
		fmt.Fprintf(out, "   %s base size:   %s\n", ui.Info(), ui.Bytes(uint64(len(base))))
		fmt.Fprintf(out, "   %s patch size:  %s\n", ui.Info(), ui.Bytes(uint64(len(patchFile))))
		fmt.Fprintf(out, "   %s result size: %s\n", ui.Info(), ui.Bytes(uint64(len(res.Output))))
		if res.VerifiedBase {
			fmt.Fprintf(out, "   %s base digest verified\n", ui.Info())
		}
		if res.VerifiedOutput {
			fmt.Fprintf(out, "   %s output digest verified\n", ui.Info())
		}
		if !*dryRun {
			fmt.Fprintf(out, "   %s saved to:    %s\n", ui.Info(), ui.Path(outPath))
		}
		printChanges(out, res)
	}
	return 0
}

func printChanges(out io.Writer, res *bpatch.ApplyResult) {
	fmt.Fprintf(out, "   %s changes:     %s\n", ui.Info(), preview.Summary(res.Changes))
	shown := res.Changes
	if len(shown) > maxPreviewRegions {
		shown = shown[:maxPreviewRegions]
	}
	for _, region := range shown {
		fmt.Fprintf(out, "   %s offset 0x%08x:\n", ui.Info(), region.Offset)
		if len(region.Removed) > 0 {
			fmt.Fprintf(out, "      - %s\n", preview.HexDump(region.Removed, 16))
		}
		if len(region.Added) > 0 {
			fmt.Fprintf(out, "      + %s\n", preview.HexDump(region.Added, 16))
		}
	}
	if rest := len(res.Changes) - maxPreviewRegions; rest > 0 {
		plural := "s"
		if rest == 1 {
			plural = ""
		}
		fmt.Fprintf(out, "   %s ... and %d more change region%s\n", ui.Info(), rest, plural)
	}
}

func cmdInspect(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	fs.SetOutput(errOut)
	verbose := fs.Bool("v", false, "verbose output")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: xdao-bpatch inspect [-v] <patch>")
		return 2
	}
	patchPath := fs.Arg(0)

	if err := fsio.Exists(patchPath); err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	patchFile, err := os.ReadFile(patchPath)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}

	info, err := bpatch.Inspect(patchFile)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}

	if !*verbose {
		validity := "valid"
		if !info.Valid {
			validity = "INVALID"
		}
		note := ""
		if info.HasChecksums {
			note = " (with checksums)"
		}
		fmt.Fprintf(out, "%s %s %s patch → %s output%s\n",
			ui.Ok(), validity, ui.Bytes(uint64(info.PatchSize)),
			ui.Bytes(uint64(info.DeclaredOutputSize)), note)
		return 0
	}

	fmt.Fprintf(out, "%s patch information\n", ui.Info())
	fmt.Fprintf(out, "   %s file:          %s\n", ui.Info(), ui.Path(patchPath))
	fmt.Fprintf(out, "   %s format:        %s\n", ui.Info(), info.Format)
	fmt.Fprintf(out, "   %s patch size:    %s\n", ui.Info(), ui.Bytes(uint64(info.PatchSize)))
	fmt.Fprintf(out, "   %s output size:   %s\n", ui.Info(), ui.Bytes(uint64(info.DeclaredOutputSize)))
	fmt.Fprintf(out, "   %s valid:         %v\n", ui.Info(), info.Valid)
	fmt.Fprintf(out, "   %s bidirectional: %v\n", ui.Info(), info.HasReverse)
	fmt.Fprintf(out, "   %s content id:    %s\n", ui.Info(), info.ContentID)
	if info.HasChecksums {
		fmt.Fprintf(out, "   %s checksums:     yes\n", ui.Info())
		fmt.Fprintf(out, "   %s base digest:   %s\n", ui.Info(), orNone(info.BaseDigest))
		fmt.Fprintf(out, "   %s output digest: %s\n", ui.Info(), orNone(info.OutputDigest))
	}
	if info.HasMetadata {
		fmt.Fprintf(out, "   %s metadata:      %q\n", ui.Info(), info.Metadata)
	}
	return 0
}

func cmdSign(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("sign", flag.ContinueOnError)
	fs.SetOutput(errOut)
	alg := fs.String("alg", sign.AlgEd25519, "signature algorithm (ed25519, dilithium3)")
	seedHex := fs.String("seed-hex", "", "ed25519 seed, 64 hex chars")
	keyFile := fs.String("key-file", "", "dilithium3 private key file")
	hashAlg := fs.String("sign-hash", sign.HashSHA256, "digest over the signed message (sha256, sha512, sha3-256)")
	output := fs.String("o", "", "signature output path (default <patch>.sig)")
	force := fs.Bool("f", false, "overwrite the signature file if it exists")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: xdao-bpatch sign [flags] <patch>")
		return 2
	}
	patchPath := fs.Arg(0)

	patchFile, err := os.ReadFile(patchPath)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}

	var armored string
	switch *alg {
	case sign.AlgEd25519:
		if len(*seedHex) != 2*ed25519.SeedSize {
			fmt.Fprintln(errOut, "sign: --seed-hex must be 64 hex chars")
			return 2
		}
		seed, err := hex.DecodeString(*seedHex)
		if err != nil {
			fmt.Fprintf(errOut, "sign: invalid --seed-hex: %v\n", err)
			return 2
		}
		armored, err = sign.Ed25519(patchFile, *hashAlg, ed25519.NewKeyFromSeed(seed))
		if err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
	case sign.AlgDilithium3:
		if *keyFile == "" {
			fmt.Fprintln(errOut, "sign: --key-file is required for dilithium3")
			return 2
		}
		raw, err := os.ReadFile(*keyFile)
		if err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
		var priv mode3.PrivateKey
		if err := priv.UnmarshalBinary(raw); err != nil {
			fmt.Fprintf(errOut, "sign: invalid dilithium3 private key: %v\n", err)
			return 1
		}
		armored, err = sign.Dilithium3(patchFile, *hashAlg, &priv)
		if err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
	default:
		fmt.Fprintf(errOut, "sign: unsupported algorithm %q\n", *alg)
		return 2
	}

	sigPath := *output
	if sigPath == "" {
		sigPath = patchPath + ".sig"
	}
	if err := fsio.WriteFile(sigPath, []byte(armored+"\n"), *force); err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	fmt.Fprintf(out, "%s signed %s → %s\n", ui.Ok(), ui.Path(patchPath), ui.Path(sigPath))
	return 0
}

func cmdVerifySig(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("verify-sig", flag.ContinueOnError)
	fs.SetOutput(errOut)
	sigPath := fs.String("sig", "", "detached signature file")
	pubB64 := fs.String("pub", "", "base64 public key")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 || *sigPath == "" || *pubB64 == "" {
		fmt.Fprintln(errOut, "usage: xdao-bpatch verify-sig --sig <file> --pub <base64> <patch>")
		return 2
	}

	patchFile, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	armored, err := os.ReadFile(*sigPath)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	pub, err := base64.StdEncoding.DecodeString(*pubB64)
	if err != nil {
		fmt.Fprintf(errOut, "verify-sig: invalid --pub base64: %v\n", err)
		return 2
	}

	if err := sign.Verify(patchFile, string(armored), pub); err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	fmt.Fprintf(out, "%s signature valid\n", ui.Ok())
	return 0
}

func cmdStore(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: xdao-bpatch store <put|get> ...")
		return 2
	}
	switch args[0] {
	case "put":
		fs := flag.NewFlagSet("store put", flag.ContinueOnError)
		fs.SetOutput(errOut)
		dir := fs.String("dir", "", "archive root directory")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if fs.NArg() != 1 || *dir == "" {
			fmt.Fprintln(errOut, "usage: xdao-bpatch store put --dir <root> <patch>")
			return 2
		}
		data, err := os.ReadFile(fs.Arg(0))
		if err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
		s, err := store.NewFS(*dir)
		if err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
		id, err := s.Put(data)
		if err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
		fmt.Fprintln(out, id.String())
		return 0
	case "get":
		fs := flag.NewFlagSet("store get", flag.ContinueOnError)
		fs.SetOutput(errOut)
		dir := fs.String("dir", "", "archive root directory")
		output := fs.String("o", "", "output path")
		force := fs.Bool("f", false, "overwrite the output file if it exists")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if fs.NArg() != 1 || *dir == "" || *output == "" {
			fmt.Fprintln(errOut, "usage: xdao-bpatch store get --dir <root> -o <out> <id>")
			return 2
		}
		id, err := cid.Decode(fs.Arg(0))
		if err != nil {
			fmt.Fprintf(errOut, "store: invalid patch id: %v\n", err)
			return 2
		}
		s, err := store.NewFS(*dir)
		if err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
		data, err := s.Get(id)
		if err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
		if err := fsio.WriteFile(*output, data, *force); err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
		fmt.Fprintf(out, "%s wrote %s to %s\n", ui.Ok(), ui.Bytes(uint64(len(data))), ui.Path(*output))
		return 0
	default:
		fmt.Fprintf(errOut, "store: unknown subcommand %q\n", args[0])
		return 2
	}
}

func readInput(path string, p *ui.Printer, errOut io.Writer) ([]byte, error) {
	var progress io.Writer
	if p.Level() != ui.Quiet {
		progress = errOut
	}
	return fsio.ReadFile(path, progress)
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
