package portscan

// CommonPorts es la lista fija de puertos que se escanean, en orden.
var CommonPorts = []int{
	21, 22, 23, 25, 53, 80, 81, 110, 111, 135, 139, 143, 443, 445, 993, 995,
	1723, 3000, 3306, 3389, 5432, 5900, 6379, 8000, 8080, 8081, 8082, 8443,
	8888, 9000, 9090, 27017,
}

// unsafePorts son los puertos que los clientes HTTP de navegador rechazan.
// Nunca se sondean: cualquier resultado sería un artefacto del transporte.
var unsafePorts = map[int]struct{}{}

func init() {
	for _, p := range []int{
		1, 7, 9, 11, 13, 15, 17, 19, 20, 21, 22, 23, 25, 37, 42, 43, 53, 77, 79,
		87, 95, 101, 102, 103, 104, 109, 110, 111, 113, 115, 117, 119, 123, 135,
		139, 143, 179, 389, 465, 512, 513, 514, 515, 526, 530, 531, 532, 540,
		556, 563, 587, 601, 636, 993, 995, 2049, 3659, 4045, 6000, 6665, 6666,
		6667, 6668, 6669, 6697,
	} {
		unsafePorts[p] = struct{}{}
	}
}

var services = map[int]string{
	21:    "ftp",
	22:    "ssh",
	23:    "telnet",
	25:    "smtp",
	53:    "dns",
	80:    "http",
	110:   "pop3",
	143:   "imap",
	443:   "https",
	445:   "smb",
	993:   "imaps",
	995:   "pop3s",
	1723:  "pptp",
	3306:  "mysql",
	3389:  "rdp",
	5432:  "postgresql",
	5900:  "vnc",
	6379:  "redis",
	8000:  "http-alt",
	8080:  "http-proxy",
	8443:  "https-alt",
	27017: "mongodb",
}

// IsUnsafe indica si el puerto está en la lista de bloqueados.
func IsUnsafe(port int) bool {
	_, ok := unsafePorts[port]
	return ok
}

// ServiceName devuelve el servicio conocido del puerto o "unknown".
func ServiceName(port int) string {
	if s, ok := services[port]; ok {
		return s
	}
	return "unknown"
}

// protocols devuelve el orden de protocolos a probar: HTTPS primero en los
// puertos TLS habituales.
func protocols(port int) []string {
	if port == 443 || port == 8443 {
		return []string{"https", "http"}
	}
	return []string{"http", "https"}
}
