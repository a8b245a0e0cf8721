package rdap

import (
	"fmt"
	"strings"

	"webnmap/internal/core/domain"
	"webnmap/internal/sources/common"
)

// unknown rellena los campos que el documento no trae.
const unknown = "Unknown"

// rdapResponse representa la respuesta de RDAP (simplificada).
// Cubre tanto objetos domain como ip network.
type rdapResponse struct {
	ObjectClassName string   `json:"objectClassName"`
	Handle          string   `json:"handle"`
	Name            string   `json:"name"`    // ip network
	LDHName         string   `json:"ldhName"` // domain
	Status          []string `json:"status"`

	Entities    []rdapEntity     `json:"entities"`
	Nameservers []rdapNameserver `json:"nameservers"`
	Events      []rdapEvent      `json:"events"`

	SecureDNS *struct {
		DelegationSigned bool `json:"delegationSigned"`
	} `json:"secureDNS"`
}

// rdapEntity representa una entidad (registrar, contacto)
type rdapEntity struct {
	Handle     string        `json:"handle"`
	Roles      []string      `json:"roles"`
	VCardArray []interface{} `json:"vcardArray"`
	Entities   []rdapEntity  `json:"entities"`
}

type rdapNameserver struct {
	LDHName string `json:"ldhName"`
}

type rdapEvent struct {
	EventAction string `json:"eventAction"`
	EventDate   string `json:"eventDate"`
}

// renderText produce el texto de la herramienta whois.
func renderText(doc *rdapResponse) string {
	var out common.Lines
	out.Add("Handle", doc.Handle)
	out.Add("Name", common.FirstNonEmpty(doc.Name, doc.LDHName))

	for _, e := range doc.Events {
		out.Raw(fmt.Sprintf("%s: %s\n", e.EventAction, e.EventDate))
	}

	for _, ent := range doc.Entities {
		out.Raw(fmt.Sprintf("Entity: %s [%s]\n", ent.Handle, strings.Join(ent.Roles, ", ")))
		for _, prop := range vcardProperties(ent.VCardArray) {
			switch prop.name {
			case "fn":
				out.Raw("  Name: " + prop.text() + "\n")
			case "adr":
				out.Raw("  Address: " + strings.Join(prop.parts(), ", ") + "\n")
			case "email":
				out.Raw("  Email: " + prop.text() + "\n")
			case "tel":
				out.Raw("  Phone: " + prop.text() + "\n")
			}
		}
	}

	if doc.Nameservers != nil {
		out.Raw("\nNameservers:\n")
		for _, ns := range doc.Nameservers {
			out.Raw("  " + ns.LDHName + "\n")
		}
	}
	return out.String()
}

// summarize extrae el resumen estructurado del registro.
func summarize(doc *rdapResponse) domain.Registration {
	reg := domain.Registration{
		Registrar: unknown,
		Handle:    doc.Handle,
		Created:   unknown,
		Expires:   unknown,
		Status:    doc.Status,
	}

	for _, event := range doc.Events {
		switch strings.ToLower(event.EventAction) {
		case "registration":
			reg.Created = event.EventDate
		case "last changed":
			reg.Updated = event.EventDate
		case "expiration":
			reg.Expires = event.EventDate
		}
	}

	for _, ns := range doc.Nameservers {
		if ns.LDHName != "" {
			reg.Nameservers = append(reg.Nameservers, strings.ToLower(ns.LDHName))
		}
	}

	if doc.SecureDNS != nil {
		signed := doc.SecureDNS.DelegationSigned
		reg.DNSSEC = &signed
	}

	if name := registrarName(doc.Entities); name != "" {
		reg.Registrar = name
	}
	return reg
}

// registrarName busca el fn de la entidad con rol registrar; si no hay,
// usa el fn de la primera entidad que tenga uno.
func registrarName(entities []rdapEntity) string {
	for _, ent := range entities {
		if hasRole(ent.Roles, "registrar") {
			if name := vcardField(ent.VCardArray, "fn"); name != "" {
				return name
			}
		}
	}
	for _, ent := range entities {
		if name := vcardField(ent.VCardArray, "fn"); name != "" {
			return name
		}
	}
	return ""
}

// hasRole checks if entity has a specific role
func hasRole(roles []string, role string) bool {
	for _, r := range roles {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}
