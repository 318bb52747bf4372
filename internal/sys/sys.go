// Package sys defines the directory syntaxes and standard attribute types known to the system.
package sys

import (
	"strings"
)

// Syntax is the object identifier of an attribute syntax.
type Syntax string

const (
	SyntaxDirectoryString = Syntax("1.3.6.1.4.1.1466.115.121.1.15")
	SyntaxDN              = Syntax("1.3.6.1.4.1.1466.115.121.1.12")
	SyntaxInteger         = Syntax("1.3.6.1.4.1.1466.115.121.1.27")
	SyntaxBoolean         = Syntax("1.3.6.1.4.1.1466.115.121.1.7")
	SyntaxOctetString     = Syntax("1.3.6.1.4.1.1466.115.121.1.40")
	SyntaxGeneralizedTime = Syntax("1.3.6.1.4.1.1466.115.121.1.24")
	SyntaxOID             = Syntax("1.3.6.1.4.1.1466.115.121.1.38")
	SyntaxTelephoneNumber = Syntax("1.3.6.1.4.1.1466.115.121.1.50")
	SyntaxIA5String       = Syntax("1.3.6.1.4.1.1466.115.121.1.26")
	SyntaxPrintableString = Syntax("1.3.6.1.4.1.1466.115.121.1.44")
	SyntaxNumericString   = Syntax("1.3.6.1.4.1.1466.115.121.1.36")
	SyntaxUUID            = Syntax("1.3.6.1.1.16.1")
)

// Syntaxes indexes the known syntaxes by their short names.
var Syntaxes map[string]Syntax = map[string]Syntax{
	"directorystring": SyntaxDirectoryString,
	"dn":              SyntaxDN,
	"integer":         SyntaxInteger,
	"boolean":         SyntaxBoolean,
	"octetstring":     SyntaxOctetString,
	"generalizedtime": SyntaxGeneralizedTime,
	"oid":             SyntaxOID,
	"telephonenumber": SyntaxTelephoneNumber,
	"ia5string":       SyntaxIA5String,
	"printablestring": SyntaxPrintableString,
	"numericstring":   SyntaxNumericString,
	"uuid":            SyntaxUUID,
}

// ParseSyntax resolves a syntax given by OID or short name.
func ParseSyntax(s string) (syntax Syntax, ok bool) {
	syntax, ok = Syntaxes[strings.ToLower(s)]
	if ok {
		return
	}
	for _, known := range Syntaxes {
		if string(known) == s {
			syntax = known
			ok = true
			return
		}
	}
	return
}

// AttrType is a standard attribute type.
type AttrType struct {
	Name        string
	Syntax      Syntax
	SingleValue bool
	// Operational attributes are maintained by the directory.
	Operational bool
}

// AttrTypes could come from a subschema entry but these cover the common object classes.
var AttrTypes map[string]AttrType = map[string]AttrType{
	"objectclass":     {Name: "objectClass", Syntax: SyntaxOID},
	"cn":              {Name: "cn", Syntax: SyntaxDirectoryString},
	"sn":              {Name: "sn", Syntax: SyntaxDirectoryString},
	"givenname":       {Name: "givenName", Syntax: SyntaxDirectoryString},
	"displayname":     {Name: "displayName", Syntax: SyntaxDirectoryString, SingleValue: true},
	"description":     {Name: "description", Syntax: SyntaxDirectoryString},
	"o":               {Name: "o", Syntax: SyntaxDirectoryString},
	"ou":              {Name: "ou", Syntax: SyntaxDirectoryString},
	"l":               {Name: "l", Syntax: SyntaxDirectoryString},
	"dc":              {Name: "dc", Syntax: SyntaxIA5String, SingleValue: true},
	"uid":             {Name: "uid", Syntax: SyntaxDirectoryString},
	"mail":            {Name: "mail", Syntax: SyntaxIA5String},
	"telephonenumber": {Name: "telephoneNumber", Syntax: SyntaxTelephoneNumber},
	"employeenumber":  {Name: "employeeNumber", Syntax: SyntaxDirectoryString, SingleValue: true},
	"uidnumber":       {Name: "uidNumber", Syntax: SyntaxInteger, SingleValue: true},
	"gidnumber":       {Name: "gidNumber", Syntax: SyntaxInteger, SingleValue: true},
	"homedirectory":   {Name: "homeDirectory", Syntax: SyntaxIA5String, SingleValue: true},
	"loginshell":      {Name: "loginShell", Syntax: SyntaxIA5String, SingleValue: true},
	"member":          {Name: "member", Syntax: SyntaxDN},
	"uniquemember":    {Name: "uniqueMember", Syntax: SyntaxDN},
	"manager":         {Name: "manager", Syntax: SyntaxDN},
	"seealso":         {Name: "seeAlso", Syntax: SyntaxDN},
	"userpassword":    {Name: "userPassword", Syntax: SyntaxOctetString},
	"jpegphoto":       {Name: "jpegPhoto", Syntax: SyntaxOctetString},
	"pwdaccountlockedtime": {
		Name: "pwdAccountLockedTime", Syntax: SyntaxGeneralizedTime, SingleValue: true, Operational: true,
	},
	"entryuuid":       {Name: "entryUUID", Syntax: SyntaxUUID, SingleValue: true, Operational: true},
	"entrydn":         {Name: "entryDN", Syntax: SyntaxDN, SingleValue: true, Operational: true},
	"createtimestamp": {Name: "createTimestamp", Syntax: SyntaxGeneralizedTime, SingleValue: true, Operational: true},
	"modifytimestamp": {Name: "modifyTimestamp", Syntax: SyntaxGeneralizedTime, SingleValue: true, Operational: true},
}

// LookupAttrType returns the standard attribute type with the given name, compared case-insensitively.
func LookupAttrType(name string) (attrType AttrType, ok bool) {
	attrType, ok = AttrTypes[strings.ToLower(name)]
	return
}

// SyntaxOf returns the syntax of the named attribute, defaulting to Directory String for unknown names.
func SyntaxOf(name string) Syntax {
	attrType, ok := LookupAttrType(name)
	if !ok {
		return SyntaxDirectoryString
	}
	return attrType.Syntax
}
