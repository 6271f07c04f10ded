// Package discovery enumerates certificate sources from the cluster.
//
// Sources come from two independent origins: Ingress resources carrying TLS
// configuration, and cert-manager Certificate resources. A query failure
// against one origin is logged and yields zero sources from that origin for
// the tick; it never aborts the other origin or the tick itself.
package discovery

import (
	"context"

	"github.com/go-logr/logr"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
)

// CertificateGVR identifies cert-manager Certificate resources. They are read
// through the dynamic client so the controller does not depend on the
// cert-manager API module.
var CertificateGVR = schema.GroupVersionResource{
	Group:    "cert-manager.io",
	Version:  "v1",
	Resource: "certificates",
}

// Source identifies one certificate to synchronize: where its Secret lives
// and which domain it serves. Sources are produced fresh every tick and never
// persisted; the domain is the join key into the hash store.
type Source struct {
	Namespace  string
	SecretName string
	Domain     string
}

// Discoverer lists certificate sources across all namespaces.
type Discoverer struct {
	kube   kubernetes.Interface
	dyn    dynamic.Interface
	logger logr.Logger
}

// NewDiscoverer returns a Discoverer using the given clients.
func NewDiscoverer(kube kubernetes.Interface, dyn dynamic.Interface, logger logr.Logger) *Discoverer {
	return &Discoverer{
		kube:   kube,
		dyn:    dyn,
		logger: logger,
	}
}

// Sources returns the current set of certificate sources. No deduplication is
// performed within or across origins: if two sources resolve to the same
// domain, the later one wins in the hash store (last-write-wins).
func (d *Discoverer) Sources(ctx context.Context) []Source {
	sources := d.fromIngresses(ctx)
	sources = append(sources, d.fromCertificates(ctx)...)
	return sources
}

// fromIngresses emits one source per Ingress TLS entry, keyed by the entry's
// first declared host.
func (d *Discoverer) fromIngresses(ctx context.Context) []Source {
	var sources []Source

	ingresses, err := d.kube.NetworkingV1().Ingresses(metav1.NamespaceAll).List(ctx, metav1.ListOptions{})
	if err != nil {
		d.logger.Error(err, "Failed to list Ingresses, origin contributes no sources this tick")
		return nil
	}

	for _, ing := range ingresses.Items {
		for _, tls := range ing.Spec.TLS {
			if tls.SecretName == "" || len(tls.Hosts) == 0 {
				d.logger.V(1).Info("Skipping Ingress TLS entry without secret or hosts",
					"namespace", ing.Namespace, "ingress", ing.Name)
				continue
			}
			sources = append(sources, Source{
				Namespace:  ing.Namespace,
				SecretName: tls.SecretName,
				Domain:     tls.Hosts[0],
			})
		}
	}

	return sources
}

// fromCertificates emits one source per cert-manager Certificate, keyed by
// the first declared DNS name.
func (d *Discoverer) fromCertificates(ctx context.Context) []Source {
	var sources []Source

	certs, err := d.dyn.Resource(CertificateGVR).Namespace(metav1.NamespaceAll).List(ctx, metav1.ListOptions{})
	if err != nil {
		d.logger.Error(err, "Failed to list cert-manager Certificates, origin contributes no sources this tick")
		return nil
	}

	for _, cert := range certs.Items {
		src, ok := certificateSource(&cert)
		if !ok {
			d.logger.V(1).Info("Skipping Certificate without secretName or dnsNames",
				"namespace", cert.GetNamespace(), "certificate", cert.GetName())
			continue
		}
		sources = append(sources, src)
	}

	return sources
}

func certificateSource(cert *unstructured.Unstructured) (Source, bool) {
	secretName, _, _ := unstructured.NestedString(cert.Object, "spec", "secretName")
	dnsNames, _, _ := unstructured.NestedStringSlice(cert.Object, "spec", "dnsNames")
	if secretName == "" || len(dnsNames) == 0 {
		return Source{}, false
	}
	return Source{
		Namespace:  cert.GetNamespace(),
		SecretName: secretName,
		Domain:     dnsNames[0],
	}, true
}
